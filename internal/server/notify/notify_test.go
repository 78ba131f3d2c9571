package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/sethnnections/authkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	msgs   []Message
	err    error
	closed bool
}

func (r *recordingSender) Send(_ context.Context, m Message) error {
	r.msgs = append(r.msgs, m)
	return r.err
}

func (r *recordingSender) Close() error {
	r.closed = true
	return nil
}

func newTestMailer(s Sender) *Mailer {
	m := NewMailer("https://app.example.com", s)
	m.newID = func() string { return "msg-1" }
	return m
}

func TestMailer_VerificationLink(t *testing.T) {
	rec := &recordingSender{}
	m := newTestMailer(rec)

	require.NoError(t, m.SendVerificationEmail(context.Background(), "a@example.com", "tok+/="))
	require.Len(t, rec.msgs, 1)

	got := rec.msgs[0]
	assert.Equal(t, KindVerifyEmail, got.Kind)
	assert.Equal(t, "a@example.com", got.To)
	assert.Equal(t, "https://app.example.com/v1/auth/verify-email?token=tok%2B%2F%3D", got.Link)
	assert.Contains(t, got.Text, got.Link)
}

func TestMailer_ResetLink(t *testing.T) {
	rec := &recordingSender{}
	m := newTestMailer(rec)

	require.NoError(t, m.SendResetPasswordEmail(context.Background(), "a@example.com", "abc"))
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, KindResetPassword, rec.msgs[0].Kind)
	assert.Equal(t, "https://app.example.com/reset-password?token=abc", rec.msgs[0].Link)
}

func TestMailer_PropagatesSenderError(t *testing.T) {
	rec := &recordingSender{err: errors.New("queue down")}
	m := newTestMailer(rec)

	err := m.SendResetPasswordEmail(context.Background(), "a@example.com", "abc")
	assert.EqualError(t, err, "queue down")
}

func TestMailer_CloseClosesSender(t *testing.T) {
	rec := &recordingSender{}
	require.NoError(t, newTestMailer(rec).Close())
	assert.True(t, rec.closed)

	require.NoError(t, newTestMailer(NewLogSender(logging.NewNop())).Close())
}

func TestLogSender_KeepsLinkAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	err := NewLogSender(l).Send(context.Background(), Message{ID: "1", Kind: KindVerifyEmail, To: "a@example.com", Link: "https://x/?token=secret"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "email queued")
	assert.NotContains(t, out, "secret")
}

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
	closed        bool
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQSender_PublishesPersistentJSON(t *testing.T) {
	pub := &fakePublisher{}
	s := &RabbitMQSender{ch: pub, queue: "email_jobs"}

	require.NoError(t, s.Send(context.Background(), Message{ID: "m1", Kind: KindResetPassword, To: "a@example.com"}))

	assert.Equal(t, "", pub.exchange)
	assert.Equal(t, "email_jobs", pub.key)
	assert.Equal(t, "application/json", pub.msg.ContentType)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "m1", pub.msg.MessageId)

	var decoded Message
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, "a@example.com", decoded.To)

	require.NoError(t, s.Close())
	assert.True(t, pub.closed)
}

func TestRabbitMQSender_Error(t *testing.T) {
	s := &RabbitMQSender{ch: &fakePublisher{err: amqp.ErrClosed}, queue: "q"}
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), amqp.ErrClosed)
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaSender_KeysByRecipient(t *testing.T) {
	w := &fakeWriter{}
	s := NewKafkaSenderWithWriter(w)

	require.NoError(t, s.Send(context.Background(), Message{ID: "m1", Kind: KindVerifyEmail, To: "a@example.com"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "a@example.com", string(w.msgs[0].Key))
	assert.Equal(t, "kind", w.msgs[0].Headers[0].Key)
	assert.Equal(t, KindVerifyEmail, string(w.msgs[0].Headers[0].Value))

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestKafkaSender_Error(t *testing.T) {
	s := NewKafkaSenderWithWriter(&fakeWriter{err: errors.New("no brokers")})
	assert.EqualError(t, s.Send(context.Background(), Message{}), "no brokers")
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Sender_SpoolsUnderOutbox(t *testing.T) {
	p := &fakePutter{}
	s := &S3Sender{client: p, bucket: "auth-outbox"}

	require.NoError(t, s.Send(context.Background(), Message{ID: "m1", Kind: KindResetPassword, To: "a@example.com"}))

	assert.Equal(t, "auth-outbox", aws.ToString(p.in.Bucket))
	assert.Equal(t, "outbox/reset_password/m1.json", aws.ToString(p.in.Key))
	assert.True(t, strings.Contains(string(p.body), `"to":"a@example.com"`))
}

func TestNewS3Sender_AppliesOptions(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{Region: lo.Region}, nil
	}
	var endpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		endpoint = aws.ToString(opts.BaseEndpoint)
		return &s3.Client{}
	}

	s, err := NewS3Sender(context.Background(), S3Options{Region: "us-east-1", BaseEndpoint: "http://127.0.0.1:9000", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", s.bucket)
	assert.Equal(t, "http://127.0.0.1:9000", endpoint)
}

func TestNewS3Sender_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Sender(context.Background(), S3Options{})
	assert.ErrorContains(t, err, "no creds")
}
