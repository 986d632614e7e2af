package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockConsumerClient struct {
	mock.Mock
}

func (c *MockConsumerClient) PollFetches(ctx context.Context) kgo.Fetches {
	return c.Called(ctx).Get(0).(kgo.Fetches)
}

func (c *MockConsumerClient) CommitUncommittedOffsets(ctx context.Context) error {
	return c.Called(ctx).Error(0)
}

func (c *MockConsumerClient) Close() {
	c.Called()
}

type MockReceiver struct {
	mock.Mock
}

func (r *MockReceiver) Receive(
	ctx context.Context, id string, v domain.Submission,
) error {
	return r.Called(ctx, id, v).Error(0)
}

// registryID resolves every subject to the same schema ID.
type registryID int

func (id registryID) DetermineID(context.Context, string, string) (int, error) {
	return int(id), nil
}

func newSerde(t *testing.T) schema.Serde {
	t.Helper()
	s, err := schema.NewSerdeRegistrationV1(
		t.Context(),
		schema.SubjectOpt("registrations-value"),
		schema.SchemaIdentifierOpt(registryID(1)),
	)
	require.NoError(t, err)
	return s
}

func fetchesOf(values ...[]byte) kgo.Fetches {
	rs := make([]*kgo.Record, len(values))
	for i, v := range values {
		rs[i] = &kgo.Record{Value: v, Offset: int64(i)}
	}
	return kgo.Fetches{{
		Topics: []kgo.FetchTopic{{
			Topic:      "registrations",
			Partitions: []kgo.FetchPartition{{Records: rs}},
		}},
	}}
}

func encodeSubmission(t *testing.T, id string, v domain.Submission) []byte {
	t.Helper()
	b, err := newSerde(t).Encode(registrationToSchemaV1(id, v))
	require.NoError(t, err)
	return b
}

// unknownSchema is a well formed registry header pointing at schema ID 9
// followed by a valid Avro payload.
func unknownSchema(t *testing.T) []byte {
	t.Helper()
	payload, err := avro.Marshal(
		schema.RegistrationV1Avro(),
		registrationToSchemaV1("id-9", testSubmission()),
	)
	require.NoError(t, err)
	return append([]byte{0, 0, 0, 0, 9}, payload...)
}

func TestRegistrationConsumer(t *testing.T) {
	newConsumer := func(
		t *testing.T, cl *MockConsumerClient, r *MockReceiver,
	) *RegistrationConsumer {
		t.Helper()
		c, err := NewRegistrationConsumer(
			ConsumerRawClientOpt(cl),
			ConsumerDecoderOpt(newSerde(t)),
			ConsumerReceiverOpt(r),
		)
		require.NoError(t, err)
		return c
	}

	t.Run("TooFewOpts", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = NewRegistrationConsumer(ConsumerDecoderOpt(newSerde(t)))
		})
	})

	t.Run("NilReceiver", func(t *testing.T) {
		_, err := NewRegistrationConsumer(
			ConsumerRawClientOpt(new(MockConsumerClient)),
			ConsumerDecoderOpt(newSerde(t)),
			ConsumerReceiverOpt(nil),
		)
		assert.Error(t, err)
	})

	t.Run("SkipsUndecodable", func(t *testing.T) {
		v := testSubmission()
		cl := new(MockConsumerClient)
		r := new(MockReceiver)

		cl.On("PollFetches", mock.Anything).
			Return(fetchesOf(
				[]byte{0xff},
				unknownSchema(t),
				encodeSubmission(t, "id-1", v),
			)).Once()
		cl.On("CommitUncommittedOffsets", mock.Anything).Return(nil).Once()
		r.On("Receive", mock.Anything, "id-1", v).Return(nil).Once()

		require.NoError(t, newConsumer(t, cl, r).consume(t.Context()))
		cl.AssertExpectations(t)
		r.AssertExpectations(t)
		r.AssertNumberOfCalls(t, "Receive", 1)
	})

	t.Run("ReceiverFailsNoCommit", func(t *testing.T) {
		cl := new(MockConsumerClient)
		r := new(MockReceiver)

		cl.On("PollFetches", mock.Anything).
			Return(fetchesOf(encodeSubmission(t, "id-2", testSubmission()))).Once()
		r.On("Receive", mock.Anything, "id-2", mock.Anything).
			Return(errors.New("disk full")).Once()

		assert.Error(t, newConsumer(t, cl, r).consume(t.Context()))
		cl.AssertNotCalled(t, "CommitUncommittedOffsets", mock.Anything)
	})

	t.Run("EmptyFetches", func(t *testing.T) {
		cl := new(MockConsumerClient)
		cl.On("PollFetches", mock.Anything).Return(kgo.Fetches{}).Once()

		require.NoError(t, newConsumer(t, cl, new(MockReceiver)).consume(t.Context()))
		cl.AssertNotCalled(t, "CommitUncommittedOffsets", mock.Anything)
	})

	t.Run("Close", func(t *testing.T) {
		cl := new(MockConsumerClient)
		cl.On("Close").Once()
		newConsumer(t, cl, new(MockReceiver)).Close()
		cl.AssertExpectations(t)
	})
}
