package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/deniz/alumlink/internal/app/models"
	appRepos "github.com/deniz/alumlink/internal/app/repositories"
	"github.com/deniz/alumlink/internal/config"
	pkgAuth "github.com/deniz/alumlink/internal/pkg/auth"
)

// CreateDefaultData creates the default admin account and, when demo data is
// enabled, a handful of demo mentors and students to exercise the mentorship
// flows against.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	mentorRepo := appRepos.NewMentorRepository(dbPool)
	menteeRepo := appRepos.NewMenteeRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error // To collect potential errors without stopping the process

	// --- Create Default Admin User --- //
	if err := createUserIfMissing(ctx, userRepo, &appModels.User{
		Email:      "admin@alumlink.app",
		FirstName:  "Portal",
		LastName:   "Admin",
		RoleType:   appModels.RoleAdmin,
		Department: "Administration",
		IsActive:   true,
	}, "Admin123!", lgr, nil); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if cfg == nil || !cfg.Seed.DemoData {
		return finalErr
	}

	// --- Demo Mentors --- //
	mentors := []*appModels.User{
		{Email: "elif.koc@alumlink.app", FirstName: "Elif", LastName: "Koc", RoleType: appModels.RoleAlumni, Department: "Computer Engineering", IsActive: true},
		{Email: "baran.demir@alumlink.app", FirstName: "Baran", LastName: "Demir", RoleType: appModels.RoleAlumni, Department: "Electrical Engineering", IsActive: true},
	}
	for _, mentorUser := range mentors {
		if err := createUserIfMissing(ctx, userRepo, mentorUser, "Mentor123!", lgr, func(userID int64) error {
			return mentorRepo.Create(ctx, &appModels.MentorProfile{
				UserID:       userID,
				MaxMentees:   appModels.DefaultMaxMentees,
				Availability: appModels.MentorAvailable,
			})
		}); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Demo Students --- //
	students := []*appModels.User{
		{Email: "mert.aksoy@alumlink.app", FirstName: "Mert", LastName: "Aksoy", RoleType: appModels.RoleStudent, Department: "Computer Engineering", IsActive: true},
		{Email: "zeynep.arslan@alumlink.app", FirstName: "Zeynep", LastName: "Arslan", RoleType: appModels.RoleStudent, Department: "Computer Engineering", IsActive: true},
		{Email: "can.yilmaz@alumlink.app", FirstName: "Can", LastName: "Yilmaz", RoleType: appModels.RoleStudent, Department: "Mathematics", IsActive: true},
	}
	for _, studentUser := range students {
		if err := createUserIfMissing(ctx, userRepo, studentUser, "Student123!", lgr, func(userID int64) error {
			return menteeRepo.Create(ctx, &appModels.MenteeProfile{
				UserID:           userID,
				MentorshipStatus: appModels.MentorshipAvailable,
			})
		}); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

// createUserIfMissing inserts a user (and an optional role profile) unless the
// email is already taken.
func createUserIfMissing(
	ctx context.Context,
	userRepo *appRepos.UserRepository,
	user *appModels.User,
	password string,
	lgr zerolog.Logger,
	profileFn func(userID int64) error,
) error {
	exists, err := userRepo.EmailExists(ctx, user.Email)
	if err != nil {
		lgr.Error().Err(err).Str("email", user.Email).Msg("Error checking if user exists")
		return err
	}
	if exists {
		return nil
	}

	hashedPassword, err := pkgAuth.HashPassword(password)
	if err != nil {
		lgr.Error().Err(err).Str("email", user.Email).Msg("Error hashing password")
		return err
	}
	user.Password = hashedPassword

	userID, err := userRepo.Create(ctx, user)
	if err != nil {
		lgr.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return err
	}

	if profileFn != nil {
		if err := profileFn(userID); err != nil {
			lgr.Error().Err(err).Str("email", user.Email).Msg("Error creating role profile")
			return err
		}
	}

	lgr.Info().Str("email", user.Email).Str("role", string(user.RoleType)).Msg("Seeded user")
	return nil
}
