package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iir20/amar-dokan-pos-system/internal/session"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register, log in and manage the shop profile",
	}
	cmd.AddCommand(newUserRegisterCommand(rootOpts))
	cmd.AddCommand(newUserLoginCommand(rootOpts))
	cmd.AddCommand(newUserLogoutCommand(rootOpts))
	cmd.AddCommand(newUserWhoamiCommand(rootOpts))
	cmd.AddCommand(newUserProfileCommand(rootOpts))
	return cmd
}

func newUserRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var reg session.Registration
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create the shop owner account and log in",
		Example: `  dokan user register --username karim --pin 4321 --store "Karim Store" --address "Mirpur 10, Dhaka"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				user, err := app.Session.Register(ctx, reg)
				if err != nil {
					return err
				}
				return out.Success(userView(user.Profile()))
			})
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "login name (letters and digits)")
	cmd.Flags().StringVar(&reg.PIN, "pin", "", "4-8 digit PIN")
	cmd.Flags().StringVar(&reg.StoreName, "store", "", "shop name")
	cmd.Flags().StringVar(&reg.Address, "address", "", "shop address")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "shop phone")
	return cmd
}

func newUserLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var username, pin string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				user, err := app.Session.Login(ctx, username, pin)
				if err != nil {
					return err
				}
				return out.Success(userView(user.Profile()))
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&pin, "pin", "", "PIN")
	return cmd
}

func newUserLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				if err := app.Session.Logout(ctx); err != nil {
					return err
				}
				return out.Success("Logged out.")
			})
		},
	}
}

func newUserWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				user, err := app.Session.Require(ctx, "user.whoami")
				if err != nil {
					return err
				}
				return out.Success(userView(user.Profile()))
			})
		},
	}
}

func newUserProfileCommand(rootOpts *RootOptions) *cobra.Command {
	var upd session.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the shop name, address and phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				current, err := app.Session.Require(ctx, "user.profile")
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("store") {
					upd.StoreName = current.StoreName
				}
				if !cmd.Flags().Changed("address") {
					upd.Address = current.Address
				}
				if !cmd.Flags().Changed("phone") {
					upd.Phone = current.Phone
				}
				user, err := app.Session.UpdateProfile(ctx, upd)
				if err != nil {
					return err
				}
				return out.Success(userView(user.Profile()))
			})
		},
	}
	cmd.Flags().StringVar(&upd.StoreName, "store", "", "shop name")
	cmd.Flags().StringVar(&upd.Address, "address", "", "shop address")
	cmd.Flags().StringVar(&upd.Phone, "phone", "", "shop phone")
	return cmd
}
