package orchestrator

import (
	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/oneee-playground/playback-tester/internal/event"
	"github.com/oneee-playground/playback-tester/internal/monitor"
	"github.com/oneee-playground/playback-tester/internal/reservation"
	"github.com/oneee-playground/playback-tester/internal/testplan"
	"go.uber.org/zap"
)

// NewForService wires every component against one scheduling service.
// observer and publisher may be nil.
func NewForService(
	log *zap.Logger, service *avisa.Service, credential string,
	observer monitor.Observer, publisher event.Publisher,
) *Orchestrator {
	return New(Opts{
		Log:          log,
		Reservations: reservation.NewManager(log, service),
		Generator:    testplan.NewGenerator(service, credential),
		Submitter:    testplan.NewSubmitter(log, service),
		Monitor: monitor.New(monitor.Opts{
			Log:        log,
			Service:    service,
			Observer:   observer,
			ResultsURL: service.ResultsURL,
		}),
		Publisher:  publisher,
		ResultsURL: service.ResultsURL,
	})
}
