package main

import (
	"github.com/trezcool/smartlearn/core/user"
)

// addUser creates a user.User without signing them in.
func (cli *commandLine) addUser(name, email string, role user.Role, pwd string) (user.User, error) {
	return cli.svc.AddUser(user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	})
}
