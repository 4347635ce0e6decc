package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type writerMock struct{ mock.Mock }

func (m *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *writerMock) Close() error { return m.Called().Error(0) }

func newProducer(w writer) *Producer {
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &Producer{writer: w, log: log}
}

func TestPublish(t *testing.T) {
	w := &writerMock{}
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 &&
			msgs[0].Topic == "emails" &&
			string(msgs[0].Key) == "reservation:1:confirmed" &&
			string(msgs[0].Value) == `{"id":5,"to":"a@b.com","subject":"s","text":"t","dedupe_key":"reservation:1:confirmed"}`
	})).Return(nil)

	p := newProducer(w)
	err := p.Publish(context.Background(), "emails", "reservation:1:confirmed", EmailMessage{
		ID: 5, To: "a@b.com", Subject: "s", Text: "t", DedupeKey: "reservation:1:confirmed",
	})

	require.NoError(t, err)
	w.AssertExpectations(t)
}

func TestPublish_WriteError(t *testing.T) {
	w := &writerMock{}
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := newProducer(w).Publish(context.Background(), "emails", "k", EmailMessage{})
	assert.ErrorContains(t, err, "broker down")
}

func TestPublish_MarshalError(t *testing.T) {
	w := &writerMock{}
	err := newProducer(w).Publish(context.Background(), "emails", "k", make(chan int))
	assert.Error(t, err)
	w.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestClose(t *testing.T) {
	w := &writerMock{}
	w.On("Close").Return(nil)
	require.NoError(t, newProducer(w).Close())
	w.AssertExpectations(t)
}
