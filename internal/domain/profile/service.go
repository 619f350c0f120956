package profile

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"

	"gymdesk/backend/internal/mailer"
)

type Service struct {
	client     *firestore.Client
	authClient *auth.Client
	mail       mailer.Service
}

func NewService(client *firestore.Client, authClient *auth.Client, mail mailer.Service) *Service {
	return &Service{client: client, authClient: authClient, mail: mail}
}

// GetProfile gets a user's profile
func (s *Service) GetProfile(ctx context.Context, uid string) (*UserProfile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	doc, err := s.client.Collection("users").Doc(uid).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	var profile UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	profile.UID = uid

	return &profile, nil
}

// UpdateProfile updates a user's profile
func (s *Service) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	input.Trim()

	updates := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}

	if input.DisplayName != nil {
		updates["displayName"] = *input.DisplayName
	}
	if input.PhotoURL != nil {
		updates["photoURL"] = *input.PhotoURL
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Language != nil {
		updates["language"] = *input.Language
	}

	_, err := s.client.Collection("users").Doc(uid).Set(ctx, updates, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	// Mirror name/photo into Firebase Auth
	if input.DisplayName != nil || input.PhotoURL != nil {
		authUpdate := &auth.UserToUpdate{}
		if input.DisplayName != nil {
			authUpdate.DisplayName(*input.DisplayName)
		}
		if input.PhotoURL != nil {
			authUpdate.PhotoURL(*input.PhotoURL)
		}
		if _, err := s.authClient.UpdateUser(ctx, uid, authUpdate); err != nil {
			// Log but don't fail
			log.Printf("profile: failed to update auth user %s: %v", uid, err)
		}
	}

	return nil
}

// DeactivateUser deactivates a user account (Admin only)
func (s *Service) DeactivateUser(ctx context.Context, callerUID, targetUID string) error {
	if targetUID == "" {
		return fmt.Errorf("%w: userId is required", ErrBadRequest)
	}

	if callerUID == targetUID {
		return ErrCannotDeleteSelf
	}

	authUpdate := &auth.UserToUpdate{}
	authUpdate.Disabled(true)
	if _, err := s.authClient.UpdateUser(ctx, targetUID, authUpdate); err != nil {
		return fmt.Errorf("failed to disable user: %w", err)
	}

	now := time.Now().UTC()
	_, err := s.client.Collection("users").Doc(targetUID).Set(ctx, map[string]interface{}{
		"isActive":      false,
		"deactivatedAt": now,
		"deactivatedBy": callerUID,
		"updatedAt":     now,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// DeleteUser removes a user account and its auth record (Admin only)
func (s *Service) DeleteUser(ctx context.Context, callerUID, targetUID string) error {
	if targetUID == "" {
		return fmt.Errorf("%w: userId is required", ErrBadRequest)
	}

	if callerUID == targetUID {
		return ErrCannotDeleteSelf
	}

	if err := s.authClient.DeleteUser(ctx, targetUID); err != nil {
		if !auth.IsUserNotFound(err) {
			return fmt.Errorf("failed to delete auth user: %w", err)
		}
	}

	if _, err := s.client.Collection("users").Doc(targetUID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user doc: %w", err)
	}

	return nil
}

// SendPasswordReset emails a password reset link to the given address.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrBadRequest)
	}

	link, err := s.authClient.PasswordResetLink(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			// Do not leak whether an account exists.
			return nil
		}
		return fmt.Errorf("failed to generate reset link: %w", err)
	}

	msg := &mailer.Message{
		To:           []mail.Address{{Address: email}},
		Subject:      "Reset your password",
		TemplateName: mailer.TemplatePasswordReset,
		TemplateData: mailer.PasswordResetData{Link: link},
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// SendInvite invites someone to join a business by email, creating the
// auth account if it does not exist yet.
func (s *Service) SendInvite(ctx context.Context, email, businessName string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: a valid email is required", ErrBadRequest)
	}
	if strings.TrimSpace(businessName) == "" {
		return "", fmt.Errorf("%w: businessName is required", ErrBadRequest)
	}

	user, err := s.authClient.GetUserByEmail(ctx, email)
	if err != nil {
		if !auth.IsUserNotFound(err) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		create := (&auth.UserToCreate{}).Email(email)
		user, err = s.authClient.CreateUser(ctx, create)
		if err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}

		now := time.Now().UTC()
		_, err = s.client.Collection("users").Doc(user.UID).Set(ctx, map[string]interface{}{
			"uid":       user.UID,
			"email":     email,
			"isActive":  true,
			"createdAt": now,
			"updatedAt": now,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create user doc: %w", err)
		}
	}

	// New and existing accounts both set a password through the reset flow.
	link, err := s.authClient.PasswordResetLink(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to generate invite link: %w", err)
	}

	msg := &mailer.Message{
		To:           []mail.Address{{Address: email}},
		Subject:      fmt.Sprintf("You have been invited to join %s", businessName),
		TemplateName: mailer.TemplateInvite,
		TemplateData: mailer.InviteData{BusinessName: businessName, Link: link},
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send invite email: %w", err)
	}

	return user.UID, nil
}
