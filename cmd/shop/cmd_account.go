package main

import (
	"fmt"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/session"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	register api.RegisterRequest

	profileUpdate api.ProfileUpdate
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your name, phone or address",
	Args:  cobra.NoArgs,
	RunE:  runProfileUpdate,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")

	registerCmd.Flags().StringVar(&register.Name, "name", "", "Full name")
	registerCmd.Flags().StringVar(&register.Email, "email", "", "Email")
	registerCmd.Flags().StringVar(&register.Password, "password", "", "Password")
	registerCmd.Flags().StringVar(&register.Phone, "phone", "", "Phone")
	registerCmd.Flags().StringVar(&register.Address, "address", "", "Address")

	profileUpdateCmd.Flags().StringVar(&profileUpdate.Name, "name", "", "Full name")
	profileUpdateCmd.Flags().StringVar(&profileUpdate.Phone, "phone", "", "Phone")
	profileUpdateCmd.Flags().StringVar(&profileUpdate.Address, "address", "", "Address")
	profileCmd.AddCommand(profileUpdateCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	user, err := shop.session.Login(cmd.Context(), loginEmail, loginPassword)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Welcome back, %s.", user.Name)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	user, err := shop.session.Register(cmd.Context(), register)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Account created. Signed in as %s.", user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := shop.session.Logout(cmd.Context()); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	user := shop.session.User()
	if user == nil {
		return session.ErrNotSignedIn
	}
	out := cmd.OutOrStdout()
	title(out, user.Name)
	fmt.Fprintf(out, "Email    %s\n", user.Email)
	fmt.Fprintf(out, "Phone    %s\n", user.Phone)
	fmt.Fprintf(out, "Address  %s\n", user.Address)
	fmt.Fprintf(out, "Role     %s\n", user.Role)
	if user.CreatedAt != nil {
		fmt.Fprintf(out, "Since    %s\n", dateOf(user.CreatedAt))
	}
	return nil
}

// runProfileUpdate sends the full profile; flags left unset keep the
// current values.
func runProfileUpdate(cmd *cobra.Command, args []string) error {
	current := shop.session.User()
	if current == nil {
		return session.ErrNotSignedIn
	}
	update := api.ProfileUpdate{Name: current.Name, Phone: current.Phone, Address: current.Address}
	if cmd.Flags().Changed("name") {
		update.Name = profileUpdate.Name
	}
	if cmd.Flags().Changed("phone") {
		update.Phone = profileUpdate.Phone
	}
	if cmd.Flags().Changed("address") {
		update.Address = profileUpdate.Address
	}

	if _, err := shop.session.UpdateProfile(cmd.Context(), update); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Profile updated.")
	return nil
}
