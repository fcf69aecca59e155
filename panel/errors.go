package panel

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/scrapedash/client"
	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/registry"
)

var (
	// ErrInFlight is returned when an action arrives while a request is
	// running. Nothing is changed.
	ErrInFlight = errors.New("panel: request already in flight")
	// ErrClosed is returned by every action after Close.
	ErrClosed = errors.New("panel: closed")
	// ErrPaused marks a submit refused because the operator paused the panel.
	ErrPaused = errors.New("panel: paused")
	// ErrNothingToRetry is returned by Retry before the first submit.
	ErrNothingToRetry = errors.New("panel: nothing to retry")
)

// Kind classifies a failure shown to the operator.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindServer     Kind = "server"
)

// Failure is the error state of a panel. It is also returned from Submit.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Retryable reports whether the failure came from the API rather than the
// operator's input.
func (f *Failure) Retryable() bool {
	return f.Kind != KindValidation
}

func validationFailure(site *registry.Site, mode models.Mode) *Failure {
	return &Failure{
		Kind:    KindValidation,
		Message: fmt.Sprintf("Please enter a valid %s %s URL", site.Name, mode),
	}
}

func unsupportedFailure(site *registry.Site, mode models.Mode) *Failure {
	return &Failure{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s does not support %s scraping", site.Name, mode),
	}
}

func pausedFailure(site *registry.Site) *Failure {
	return &Failure{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s scraper is paused", site.Name),
		Err:     ErrPaused,
	}
}

// classify maps a client error onto the operator-facing taxonomy.
func classify(site *registry.Site, mode models.Mode, err error) *Failure {
	var canceled client.ErrCanceled
	if errors.As(err, &canceled) {
		return &Failure{
			Kind:    KindTransport,
			Message: fmt.Sprintf("The %s request was canceled before the scraping service answered.", site.Name),
			Err:     err,
		}
	}
	if client.IsTransport(err) {
		return &Failure{
			Kind:    KindTransport,
			Message: fmt.Sprintf("Could not reach the %s scraping service. Please make sure the API is running.", site.Name),
			Err:     err,
		}
	}
	var server client.ErrServer
	if errors.As(err, &server) && server.Message != "" {
		return &Failure{Kind: KindServer, Message: server.Message, Err: err}
	}
	return &Failure{
		Kind:    KindServer,
		Message: fmt.Sprintf("Failed to scrape %s %s", site.Name, mode),
		Err:     err,
	}
}
