package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/session"
)

// maxNameAttempts bounds how often register asks for another username.
const maxNameAttempts = 3

type authFlags struct {
	identifier  string
	displayName string
	printToken  bool
}

func newLoginCmd(cfg *cliConfig) *cobra.Command {
	flags := &authFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an email or username",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.identifier, "identifier", "i", "", "email or username, prompted when empty")
	cmd.Flags().BoolVar(&flags.printToken, "print-token", false, "print the session token on success")

	return cmd
}

func newRegisterCmd(cfg *cliConfig) *cobra.Command {
	flags := &authFlags{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account, then pick a username",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegister(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.identifier, "email", "e", "", "account email, prompted when empty")
	cmd.Flags().StringVarP(&flags.displayName, "username", "u", "", "username, prompted when empty")
	cmd.Flags().BoolVar(&flags.printToken, "print-token", false, "print the session token on success")

	return cmd
}

func runLogin(cmd *cobra.Command, cfg *cliConfig, flags *authFlags) error {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	identifier, err := askUnlessSet(p, flags.identifier, "Email or username")
	if err != nil {
		return err
	}
	secret, err := p.ask("Password")
	if err != nil {
		return err
	}

	ctrl := cfg.controller(cmd)
	defer ctrl.Close()

	if err := ctrl.SubmitLogin(identifier, secret); err != nil {
		return userError(err)
	}

	st, err := ctrl.Await(cmd.Context())
	if err != nil {
		return err
	}
	return finish(cmd, cfg, flags, st)
}

func runRegister(cmd *cobra.Command, cfg *cliConfig, flags *authFlags) error {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	email, err := askUnlessSet(p, flags.identifier, "Email")
	if err != nil {
		return err
	}
	secret, err := p.ask("Password")
	if err != nil {
		return err
	}

	ctrl := cfg.controller(cmd)
	defer ctrl.Close()

	if err := ctrl.SubmitRegistrationStart(email, secret); err != nil {
		return userError(err)
	}
	if st := ctrl.State(); st.Phase == session.Failed {
		return errors.New(st.Message())
	}

	for attempt := 1; ; attempt++ {
		name, err := askUnlessSet(p, flags.displayName, "Username")
		if err != nil {
			return err
		}

		if err := ctrl.SubmitRegistrationFinish(name); err != nil {
			return userError(err)
		}
		st, err := ctrl.Await(cmd.Context())
		if err != nil {
			return err
		}

		// A rejected username keeps the first step, so ask again unless the
		// name came from a flag.
		retry := st.Phase == session.Failed &&
			st.Fallback == session.UsernameRequired &&
			flags.displayName == "" &&
			attempt < maxNameAttempts
		if !retry {
			return finish(cmd, cfg, flags, st)
		}

		fmt.Fprintln(cmd.ErrOrStderr(), st.Message())
		ctrl.Dismiss()
	}
}

func askUnlessSet(p *prompter, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.ask(label)
}

// finish prints the outcome of a settled session.
func finish(cmd *cobra.Command, cfg *cliConfig, flags *authFlags, st session.State) error {
	if st.Phase != session.Authenticated {
		return errors.New(st.Message())
	}

	out := cmd.OutOrStdout()

	profile, err := cfg.client().GetProfile(cmd.Context(), st.Token)
	if err != nil {
		// The token is valid as far as the session knows, the profile is a
		// nicety.
		fmt.Fprintf(out, "Signed in as %s\n", st.Identifier)
	} else {
		fmt.Fprintf(out, "Signed in as %s (%s)\n", profile.DisplayName, profile.Email)
	}

	if flags.printToken {
		fmt.Fprintln(out, st.Token)
	}
	return nil
}

// userError turns a synchronous controller error into something printable.
func userError(err error) error {
	if authsdk.IsValidation(err) {
		return errors.New(authsdk.DisplayMessage(err))
	}
	if errors.Is(err, session.ErrBusy) {
		return errors.New("a request is already in progress")
	}
	return err
}
