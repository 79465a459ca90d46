package natsclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/staging"
)

// DefaultSubjectPrefix prefixes change subjects when none is configured.
const DefaultSubjectPrefix = "dristage"

// Publisher sends a payload to a subject. Client and the test mock
// implement it.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ChangePublisher announces applied diffs as JSON on
// "<prefix>.<kind>.updated".
type ChangePublisher struct {
	publisher Publisher
	prefix    string
	metrics   *metric.Metrics
	logger    *slog.Logger
}

// PublisherOption configures a ChangePublisher.
type PublisherOption func(*ChangePublisher)

// WithSubjectPrefix sets the subject prefix.
func WithSubjectPrefix(prefix string) PublisherOption {
	return func(p *ChangePublisher) {
		if prefix = strings.Trim(prefix, ". "); prefix != "" {
			p.prefix = prefix
		}
	}
}

// WithPublisherMetrics counts notifications in m.
func WithPublisherMetrics(m *metric.Metrics) PublisherOption {
	return func(p *ChangePublisher) {
		p.metrics = m
	}
}

// WithPublisherLogger sets the logger.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *ChangePublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewChangePublisher publishes through publisher.
func NewChangePublisher(publisher Publisher, opts ...PublisherOption) *ChangePublisher {
	p := &ChangePublisher{
		publisher: publisher,
		prefix:    DefaultSubjectPrefix,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subject returns the subject changes of kind are published on.
func (p *ChangePublisher) Subject(kind staging.Kind) string {
	return p.prefix + "." + kind.String() + ".updated"
}

// Subjects returns the wildcard matching every change subject.
func (p *ChangePublisher) Subjects() string {
	return p.prefix + ".>"
}

// Notify implements staging.ChangeNotifier.
func (p *ChangePublisher) Notify(ctx context.Context, report staging.ChangeReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return errors.WrapInvalid(err, "ChangePublisher", "Notify", "marshal report")
	}

	subject := p.Subject(report.Kind)
	err = p.publisher.Publish(ctx, subject, data)
	p.metrics.RecordNotification(report.Kind.String(), err)
	if err != nil {
		return errors.Wrap(err, "ChangePublisher", "Notify", "publish change")
	}
	p.logger.Debug("Change published", "subject", subject, "record_id", report.RecordID)
	return nil
}

// StreamPublisher publishes through a JetStream stream so changes are
// retained for late consumers.
type StreamPublisher struct {
	client *Client
}

// NewStreamPublisher ensures stream captures subjects and returns a
// Publisher writing to it.
func NewStreamPublisher(ctx context.Context, client *Client, stream string, subjects ...string) (*StreamPublisher, error) {
	if err := client.EnsureStream(ctx, stream, subjects...); err != nil {
		return nil, err
	}
	return &StreamPublisher{client: client}, nil
}

// Publish implements Publisher.
func (s *StreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return s.client.PublishToStream(ctx, subject, data)
}
