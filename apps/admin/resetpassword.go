package main

import (
	"context"

	"github.com/shakhna/portal/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	usr.Password = pwd
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
