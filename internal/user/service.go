package user

import (
	"context"
	"errors"
	"time"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/crypto"
)

type Options struct {
	BcryptCost int
	JWTSecret  string
	TokenTTL   time.Duration
}

type Service struct {
	repo Repository
	opts Options
}

func NewService(repo Repository, opts Options) *Service {
	return &Service{repo: repo, opts: opts}
}

// Authenticate returns the user when password matches. Unknown usernames and wrong passwords
// produce the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	creds, err := s.repo.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			crypto.BurnPasswordCheck(password)
			return User{}, domainerrors.Unauthenticated("Invalid username/password")
		}
		return User{}, err
	}
	if !crypto.VerifyPassword(creds.PasswordHash, password) {
		return User{}, domainerrors.Unauthenticated("Invalid username/password")
	}
	return creds.User, nil
}

func (s *Service) Register(ctx context.Context, in NewUser) (User, error) {
	hash, err := crypto.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, Registration{
		Username:      in.Username,
		PasswordHash:  hash,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		ProfileImgURL: DefaultProfileImage,
		IsAdmin:       in.IsAdmin,
	})
}

// IssueToken signs a token carrying the user's id, username and admin flag.
func (s *Service) IssueToken(u User) (string, error) {
	return crypto.GenerateToken(s.opts.JWTSecret, crypto.Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}, s.opts.TokenTTL)
}

func (s *Service) FindAll(ctx context.Context) ([]User, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, username string) (User, error) {
	return s.repo.Get(ctx, username)
}

// Actor loads the account behind a token by its id. The username claim may be stale after a
// rename or a deleted account's name being registered again.
func (s *Service) Actor(ctx context.Context, id crypto.Identity) (User, error) {
	u, err := s.repo.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return User{}, domainerrors.Unauthenticated("Account no longer exists")
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, username string, patch Patch) (User, error) {
	if patch.Empty() {
		return User{}, domainerrors.BadRequest("No data to update")
	}
	if patch.Password != nil {
		hash, err := crypto.HashPassword(*patch.Password, s.opts.BcryptCost)
		if err != nil {
			return User{}, err
		}
		patch.Password = &hash
	}
	return s.repo.Update(ctx, username, patch)
}

func (s *Service) Remove(ctx context.Context, username string) error {
	return s.repo.Remove(ctx, username)
}

// Follow sends a follow request from follower to target.
func (s *Service) Follow(ctx context.Context, target, follower string) (Follow, error) {
	if target == follower {
		return Follow{}, domainerrors.BadRequest("Users cannot follow themselves")
	}
	return s.repo.Follow(ctx, target, follower)
}

func (s *Service) Unfollow(ctx context.Context, target, follower string) error {
	return s.repo.Unfollow(ctx, target, follower)
}

func (s *Service) AcceptFollow(ctx context.Context, target, follower string) (Follow, error) {
	return s.repo.AcceptFollow(ctx, target, follower)
}

func (s *Service) GetFollowers(ctx context.Context, username string) ([]Summary, error) {
	return s.repo.GetFollowers(ctx, username)
}

func (s *Service) GetFollowing(ctx context.Context, username string) ([]Summary, error) {
	return s.repo.GetFollowing(ctx, username)
}

func (s *Service) GetFollowRequests(ctx context.Context, username string) ([]Summary, error) {
	return s.repo.GetFollowRequests(ctx, username)
}
