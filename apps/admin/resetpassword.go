package main

func (cli *commandLine) resetPassword(email, pwd string) error {
	if err := cli.svc.ResetPassword(email, pwd); err != nil {
		return err
	}
	_, _ = cli.out.Write([]byte("password updated\n"))
	return nil
}
