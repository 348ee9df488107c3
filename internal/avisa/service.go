package avisa

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Service is the typed view over the scheduling service endpoints.
type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

func (s *Service) ResultsURL(testID ID) string {
	return s.client.ResultsURL(testID)
}

func (s *Service) Reserve(ctx context.Context, req ReservationRequest) ([]ReservedDevice, error) {
	res, err := s.client.Post(ctx, "reservations/", req)
	if err != nil {
		return nil, err
	}
	if err := expectOK(res); err != nil {
		return nil, err
	}

	var body struct {
		Reservations []ReservedDevice `json:"reservations"`
	}
	if err := decode(SchemaReservations, res.Body, &body); err != nil {
		return nil, err
	}

	return body.Reservations, nil
}

func (s *Service) Release(ctx context.Context, id DeploymentID) error {
	res, err := s.client.Delete(ctx, fmt.Sprintf("reservations/%s", id), nil)
	if err != nil {
		return err
	}
	return expectOK(res)
}

func (s *Service) Device(ctx context.Context, id ID) (Device, error) {
	res, err := s.client.Get(ctx, fmt.Sprintf("devices/%s", id), nil)
	if err != nil {
		return Device{}, err
	}
	if err := expectOK(res); err != nil {
		return Device{}, err
	}

	var body struct {
		Device Device `json:"device"`
	}
	if err := decode(SchemaDevice, res.Body, &body); err != nil {
		return Device{}, err
	}

	return body.Device, nil
}

func (s *Service) SubmitTests(ctx context.Context, submission TestSubmission) ([]TestRecord, error) {
	res, err := s.client.Post(ctx, "tests/", submission)
	if err != nil {
		return nil, err
	}
	if err := expectOK(res); err != nil {
		return nil, err
	}

	var body struct {
		Tests []TestRecord `json:"tests"`
	}
	if err := decode(SchemaTests, res.Body, &body); err != nil {
		return nil, err
	}

	return body.Tests, nil
}

func (s *Service) TestStatus(ctx context.Context, testID ID) (TestStatus, error) {
	res, err := s.client.Get(ctx, fmt.Sprintf("tests/status/%s", testID), nil)
	if err != nil {
		return 0, err
	}
	if err := expectOK(res); err != nil {
		return 0, err
	}

	var body struct {
		Status TestStatus `json:"status"`
	}
	if err := decode(SchemaTestStatus, res.Body, &body); err != nil {
		return 0, err
	}

	return body.Status, nil
}

func expectOK(res *Response) error {
	if !res.OK() {
		return errors.Wrapf(ErrUnexpectedStatus, "status code %d", res.StatusCode)
	}
	return nil
}
