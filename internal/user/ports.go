package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=user

type Repository interface {
	GetCredentials(ctx context.Context, username string) (Credentials, error)
	Create(ctx context.Context, reg Registration) (User, error)
	FindAll(ctx context.Context) ([]User, error)
	Get(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, username string, patch Patch) (User, error)
	Remove(ctx context.Context, username string) error
	Follow(ctx context.Context, target string, follower string) (Follow, error)
	Unfollow(ctx context.Context, target string, follower string) error
	AcceptFollow(ctx context.Context, target string, follower string) (Follow, error)
	GetFollowers(ctx context.Context, username string) ([]Summary, error)
	GetFollowing(ctx context.Context, username string) ([]Summary, error)
	GetFollowRequests(ctx context.Context, username string) ([]Summary, error)
}
