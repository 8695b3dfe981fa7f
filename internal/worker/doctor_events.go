// Package worker handles doctor events taken off the queue.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/doctor-directory/internal/domain/entity"
	"github.com/oksasatya/doctor-directory/pkg/helpers"
	"github.com/oksasatya/doctor-directory/pkg/mailer"
)

// ErrBadMessage marks a delivery that can never succeed and should be dropped.
var ErrBadMessage = errors.New("bad doctor event")

type Indexer interface {
	IndexDoctor(ctx context.Context, id string, d entity.Doctor) error
}

type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// DoctorEvents indexes added doctors and notifies NotifyTo. Mail and NotifyTo are optional.
type DoctorEvents struct {
	Index    Indexer
	Mail     Sender
	NotifyTo string
	AppName  string
	Logger   *logrus.Logger
}

// Handle processes one message body. Errors wrapping ErrBadMessage are permanent;
// any other error means the message should be retried.
func (w *DoctorEvents) Handle(ctx context.Context, body []byte) error {
	var ev entity.DoctorAddedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	if ev.Type != entity.EventDoctorAdded {
		return fmt.Errorf("%w: unexpected type %q", ErrBadMessage, ev.Type)
	}
	if ev.Doctor.Name == "" {
		return fmt.Errorf("%w: doctor without name", ErrBadMessage)
	}

	id := ev.Doctor.ID
	if id == "" {
		id = ev.EventID
	}
	if err := w.Index.IndexDoctor(ctx, id, ev.Doctor); err != nil {
		helpers.CountMetric("worker_index_failures")
		return fmt.Errorf("index doctor %s: %w", id, err)
	}
	helpers.CountMetric("worker_indexed")
	helpers.LogInfo(w.Logger, "doctor indexed", logrus.Fields{"doctor_id": id, "event_id": ev.EventID})

	// a failed notice is logged, not retried: the doctor is already indexed
	if w.Mail != nil && w.NotifyTo != "" {
		n, err := mailer.DoctorAdded(w.AppName, ev)
		if err == nil {
			err = w.Mail.Send(ctx, w.NotifyTo, n.Subject, n.Text, n.HTML)
		}
		if err != nil {
			helpers.LogError(w.Logger, "doctor added notice failed", err, logrus.Fields{"event_id": ev.EventID})
		}
	}
	return nil
}
