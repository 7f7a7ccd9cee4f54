package classroom

import (
	"strings"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

// Login signs in the user matching `email` and `pwd`.
func (svc *Service) Login(email, pwd string) (user.User, error) {
	email = core.CleanString(email, true /* lower */)
	var usr user.User
	err := svc.store.write(func(t *tx) error {
		for _, u := range t.users {
			if strings.ToLower(u.Email) == email && u.CheckPassword(pwd) == nil {
				usr = u
				t.currentUser = &usr
				t.touch(KeyCurrentUser)
				return nil
			}
		}
		return core.NewValidationError(ErrInvalidCredentials, core.FieldError{Field: "email", Error: ErrInvalidCredentials.Error()})
	})
	if err != nil {
		return user.User{}, err
	}
	svc.logger.Info("user signed in", usr)
	return usr.Clone(), nil
}

func (svc *Service) Logout() {
	_ = svc.store.write(func(t *tx) error {
		if t.currentUser != nil {
			t.currentUser = nil
			t.touch(KeyCurrentUser)
		}
		return nil
	})
}

// Register creates a new user and signs them in.
func (svc *Service) Register(nu user.NewUser) (user.User, error) {
	usr, err := svc.createUser(nu, true)
	if err != nil {
		return user.User{}, err
	}
	svc.logger.Info("user registered", usr)
	return usr.Clone(), nil
}

// AddUser creates a user without touching the session. Used by operators.
func (svc *Service) AddUser(nu user.NewUser) (user.User, error) {
	return svc.createUser(nu, false)
}

func (svc *Service) createUser(nu user.NewUser, signIn bool) (user.User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return user.User{}, err
	}
	usr := user.User{
		ID:           newID("user"),
		Name:         nu.Name,
		Email:        nu.Email,
		Role:         nu.Role,
		RegisteredAt: now(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return user.User{}, err
	}

	err := svc.store.write(func(t *tx) error {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, usr.Email) {
				return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
			}
		}
		t.users = appendTo(t.users, usr)
		t.touch(KeyUsers)
		if signIn {
			signedIn := usr
			t.currentUser = &signedIn
			t.touch(KeyCurrentUser)
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr.Clone(), nil
}

// UpdateProfile updates the signed-in user's own profile.
func (svc *Service) UpdateProfile(userID string, up user.UpdateProfile) (user.User, error) {
	var updated user.User
	err := svc.store.write(func(t *tx) error {
		me, err := authorize(&t.state)
		if err != nil || me.ID != userID {
			return ErrPermissionDenied
		}
		for i, u := range t.users {
			if u.ID != userID {
				continue
			}
			if err := up.Validate(u, svc.validate); err != nil {
				return err
			}
			if updated, err = up.Apply(u); err != nil {
				return err
			}
			t.users = replaceAt(t.users, i, updated)
			cu := updated
			t.currentUser = &cu
			t.touch(KeyUsers, KeyCurrentUser)
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return user.User{}, err
	}
	return updated.Clone(), nil
}

// ResetPassword sets a new password for the user with `email`. Used by operators.
func (svc *Service) ResetPassword(email, pwd string) error {
	return svc.store.write(func(t *tx) error {
		email = core.CleanString(email, true /* lower */)
		for i, u := range t.users {
			if strings.ToLower(u.Email) != email {
				continue
			}
			rp := user.ResetPassword{Email: email, Password: pwd}
			if err := rp.Validate(u, svc.validate); err != nil {
				return err
			}
			if err := u.SetPassword(pwd); err != nil {
				return err
			}
			t.users = replaceAt(t.users, i, u)
			t.touch(KeyUsers)
			if t.currentUser != nil && t.currentUser.ID == u.ID {
				cu := u
				t.currentUser = &cu
				t.touch(KeyCurrentUser)
			}
			return nil
		}
		return ErrNotFound
	})
}
