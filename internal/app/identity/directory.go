package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"

	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

// ErrPasswordMismatch is shown as-is on the sign-up form.
var ErrPasswordMismatch = errors.New("Passwords do not match.")

const providerPrefix = "auth: "

// ErrorMessage turns an auth failure into the text shown to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), providerPrefix)
}

type SignUpInput struct {
	Name            string `json:"name" validate:"required"`
	Age             int    `json:"age" validate:"required,min=1,max=130"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Directory is shared by every client: it creates accounts, checks
// credentials and tokens, and serves profiles.
type Directory struct {
	auth     domain.AuthProvider
	profiles domain.ProfileStore
	validate *validator.Validate
	cache    *cache.Cache
}

func NewDirectory(auth domain.AuthProvider, profiles domain.ProfileStore) *Directory {
	return &Directory{
		auth:     auth,
		profiles: profiles,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cache:    cache.New(5*time.Minute, 10*time.Minute),
	}
}

// SignUp creates the credential and then the profile document. It does not
// sign the user in. If the profile cannot be written the credential is
// removed again so the email can be used for another attempt.
func (d *Directory) SignUp(ctx context.Context, in SignUpInput) (domain.UserID, error) {
	log := observability.LoggerFromContext(ctx)

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if in.Password != in.ConfirmPassword {
		return "", ErrPasswordMismatch
	}
	if err := d.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(err))
	}

	uid, err := d.auth.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		log.Infow("sign-up rejected", "error", err)
		return "", err
	}

	profile := &domain.UserProfile{
		ID:          uid,
		Email:       strings.ToLower(in.Email),
		DisplayName: in.Name,
		Age:         in.Age,
	}
	if err := d.profiles.SaveProfile(ctx, profile); err != nil {
		log.Errorw("failed to save profile", "user_id", uid, "error", err)
		if derr := d.auth.DeleteAccount(context.WithoutCancel(ctx), in.Email); derr != nil {
			log.Errorw("orphaned credential, email stays reserved",
				"user_id", uid, "email", profile.Email, "error", derr)
		}
		return "", fmt.Errorf("saving profile: %w", err)
	}
	cached := *profile
	d.cache.Set(string(uid), &cached, cache.DefaultExpiration)

	log.Infow("user signed up", "user_id", uid)
	return uid, nil
}

func (d *Directory) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	return d.auth.SignIn(ctx, email, password)
}

func (d *Directory) Authenticate(ctx context.Context, token string) (*domain.AuthSession, error) {
	return d.auth.Verify(ctx, token)
}

// Profile reads a profile through the cache. A user without a profile
// document still gets one carrying the id and email.
func (d *Directory) Profile(ctx context.Context, uid domain.UserID, email string) (*domain.UserProfile, error) {
	if v, ok := d.cache.Get(string(uid)); ok {
		p := *v.(*domain.UserProfile)
		return &p, nil
	}

	profile, err := d.profiles.GetProfile(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.UserProfile{ID: uid, Email: email}, nil
	}
	if err != nil {
		return nil, err
	}

	cached := *profile
	d.cache.Set(string(uid), &cached, cache.DefaultExpiration)
	return profile, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
