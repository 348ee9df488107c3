package reservation

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrReservationFailed = errors.New("reservation not successful")

type Service interface {
	Reserve(ctx context.Context, req avisa.ReservationRequest) ([]avisa.ReservedDevice, error)
	Release(ctx context.Context, id avisa.DeploymentID) error
}

// NewDeploymentID returns a random 128-bit token, hex encoded.
func NewDeploymentID() avisa.DeploymentID {
	id := uuid.New()
	return avisa.DeploymentID(hex.EncodeToString(id[:]))
}

type Manager struct {
	log     *zap.Logger
	service Service
}

func NewManager(log *zap.Logger, service Service) *Manager {
	return &Manager{log: log, service: service}
}

// Reserve asks the lab for devices. An empty result without error means
// the lab granted the reservation but had nothing to hand out.
func (m *Manager) Reserve(
	ctx context.Context,
	id avisa.DeploymentID, groupName string, specs []avisa.DeviceSpec,
) ([]avisa.ReservedDevice, error) {
	req := avisa.ReservationRequest{
		DeploymentID: id,
		GroupName:    groupName,
		Devices:      specs,
	}

	m.log.Info("requesting reservation", zap.Any("request", req))

	devices, err := m.service.Reserve(ctx, req)
	if err != nil {
		m.log.Error("reservation not successful", zap.Error(err))
		// Both stay matchable, callers tell a refused request from an unreachable lab.
		return nil, multierr.Combine(errors.Wrapf(ErrReservationFailed, "deployment %s", id), err)
	}

	m.log.Info("devices reserved", zap.Int("count", len(devices)), zap.Any("devices", devices))

	return devices, nil
}

func (m *Manager) Release(ctx context.Context, id avisa.DeploymentID) error {
	if err := m.service.Release(ctx, id); err != nil {
		m.log.Error("failed to clear reservations", zap.Error(err))
		return errors.Wrapf(err, "releasing deployment %s", id)
	}

	m.log.Info("reservations cleared")

	return nil
}
