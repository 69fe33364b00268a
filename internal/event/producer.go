package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/ContactsGo/internal/domain"
	pkgkafka "github.com/utafrali/ContactsGo/pkg/kafka"
)

// Kafka topic constants for the contacts service.
const (
	TopicUserRegistered    = "contacts.user.registered"
	TopicUserConfirmed     = "contacts.user.confirmed"
	TopicUserAvatarUpdated = "contacts.user.avatar_updated"
	TopicContactCreated    = "contacts.contact.created"
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypeContact = "contact"
)

// Source identifier for events originating from this service.
const SourceContactsService = "contacts-service"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserConfirmedData is the payload for a user.confirmed event.
type UserConfirmedData struct {
	Email string `json:"email"`
}

// UserAvatarUpdatedData is the payload for a user.avatar_updated event.
type UserAvatarUpdatedData struct {
	ID        string `json:"id"`
	AvatarURL string `json:"avatar_url"`
}

// ContactCreatedData is the payload for a contact.created event.
type ContactCreatedData struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Producer publishes contacts domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the contacts service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishUserConfirmed publishes a user.confirmed event.
func (p *Producer) PublishUserConfirmed(ctx context.Context, email string) error {
	return p.publish(ctx, TopicUserConfirmed, email, AggregateTypeUser, UserConfirmedData{Email: email})
}

// PublishUserAvatarUpdated publishes a user.avatar_updated event.
func (p *Producer) PublishUserAvatarUpdated(ctx context.Context, userID, avatarURL string) error {
	data := UserAvatarUpdatedData{
		ID:        userID,
		AvatarURL: avatarURL,
	}
	return p.publish(ctx, TopicUserAvatarUpdated, userID, AggregateTypeUser, data)
}

// PublishContactCreated publishes a contact.created event.
func (p *Producer) PublishContactCreated(ctx context.Context, contact *domain.Contact) error {
	data := ContactCreatedData{
		ID:     contact.ID,
		UserID: contact.UserID,
		Email:  contact.Email,
	}
	return p.publish(ctx, TopicContactCreated, contact.ID, AggregateTypeContact, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceContactsService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
