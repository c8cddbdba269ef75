package main

import (
	"context"
	"strings"

	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/core/user"
)

// addTeacher creates a teacher account, or promotes an existing user to the
// teacher role. The portal's own register endpoint only ever creates students.
func (cli *commandLine) addTeacher(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, user.User{
			Email:    email,
			Password: pwd,
			Name:     name,
			Role:     user.RoleTeacher,
		})
		return err
	}

	usr.Name = name
	usr.Role = user.RoleTeacher
	usr.Password = pwd
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
