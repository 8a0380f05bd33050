package authclient

import (
	"context"

	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/session"
	"github.com/jrsteele09/crm-console/token/jwt"
	"github.com/jrsteele09/crm-console/users"
)

var _ Authenticator = (*Local)(nil)

// Local authenticates against an in-process user directory. It stands in for the
// CRM backend during development and answers with the same payload shape.
type Local struct {
	users   users.UserRepo
	creator *jwt.Creator
}

func NewLocal(repo users.UserRepo, creator *jwt.Creator) *Local {
	return &Local{
		users:   repo,
		creator: creator,
	}
}

func (l *Local) Login(ctx context.Context, creds Credentials) (session.LoginResponse, error) {
	if err := ctx.Err(); err != nil {
		return session.LoginResponse{}, err
	}

	user, err := l.users.GetByEmail(creds.Email)
	if err != nil || user.Blocked || !user.CheckPassword(creds.Password) {
		return session.LoginResponse{}, apperrors.ErrInvalidCredentials
	}

	tok, err := l.creator.CreateAccessToken(user)
	if err != nil {
		return session.LoginResponse{}, apperrors.Wrapf(apperrors.ErrInternal, "issue token: %s", err.Error())
	}

	return session.LoginResponse{
		Token: tok,
		User: &session.UserRecord{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     session.RoleObject(user.Role, user.Permissions...),
		},
	}, nil
}
