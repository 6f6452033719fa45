package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"go-writer-app/internal/data"
)

// SubscriberInput carries a subscription signup.
type SubscriberInput struct {
	Email     string `validate:"required,email"`
	FirstName string
	LastName  string
	// Groups holds the notification groups the subscriber opted into;
	// empty defaults to "all".
	Groups []string `validate:"dive,oneof=all sprig blog news"`
}

// SubscriberService manages the mailing list.
type SubscriberService struct {
	subs     *data.SubscriberRepository
	validate *validator.Validate
}

// NewSubscriberService creates a SubscriberService.
func NewSubscriberService(subs *data.SubscriberRepository) *SubscriberService {
	return &SubscriberService{subs: subs, validate: validator.New()}
}

// Subscribe adds a new subscriber. Malformed input yields a
// ValidationError before any store interaction; a duplicate email
// yields a UniquenessError with nothing written.
func (s *SubscriberService) Subscribe(ctx context.Context, in SubscriberInput) (*data.Subscriber, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.validate.Struct(&in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = "failed '" + fe.Tag() + "' validation"
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, err
	}

	existing, err := s.subs.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &UniquenessError{Entity: "subscriber", Field: "email", Value: in.Email}
	}

	groups := in.Groups
	if len(groups) == 0 {
		groups = []string{data.GroupAll}
	}
	sub := &data.Subscriber{
		Email:        in.Email,
		Subscription: strings.Join(groups, ","),
		SubDate:      time.Now().UTC(),
	}
	if in.FirstName != "" {
		sub.FirstName = &in.FirstName
	}
	if in.LastName != "" {
		sub.LastName = &in.LastName
	}
	if err := s.subs.CreateSubscriber(ctx, sub); err != nil {
		return nil, &StorageError{Op: "subscribe", Err: err}
	}
	return sub, nil
}

// ListSubscribers returns every subscriber, oldest first.
func (s *SubscriberService) ListSubscribers(ctx context.Context) ([]*data.Subscriber, error) {
	return s.subs.GetAll(ctx)
}

// Unsubscribe removes a subscriber.
func (s *SubscriberService) Unsubscribe(ctx context.Context, id int64) error {
	return s.subs.DeleteSubscriber(ctx, id)
}
