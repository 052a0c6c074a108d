package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hrygo/eidos/plugin/manifest"
	"github.com/hrygo/eidos/server/auth"
	apiv1 "github.com/hrygo/eidos/server/router/api/v1"
	"github.com/hrygo/eidos/store"
)

// withStore runs fn against the configured, migrated store.
func withStore(fn func(ctx context.Context, s *store.Store) error) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	ctx := context.Background()
	s, err := openStore(ctx, p)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var username, email, name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				existing, err := s.GetUser(ctx, &store.FindUser{Username: &username})
				if err != nil {
					return err
				}
				if existing != nil {
					return fmt.Errorf("user %q already exists", username)
				}
				user, err := s.CreateUser(ctx, &store.User{
					Username: username,
					Email:    email,
					Nickname: name,
					Role:     store.RoleUser,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Username)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&username, "username", "", "unique username")
	createCmd.Flags().StringVar(&email, "email", "", "email address")
	createCmd.Flags().StringVar(&name, "name", "", "display name")
	userCmd.AddCommand(createCmd)
	return userCmd
}

func newTokenCmd() *cobra.Command {
	var userID int32
	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				user, err := s.GetUser(ctx, &store.FindUser{ID: &userID})
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("user %d not found", userID)
				}
				token, err := auth.NewTokenService(p.Secret).GenerateAccessToken(user.ID, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	tokenCmd.Flags().Int32Var(&userID, "user", 0, "user id")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", auth.AccessTokenDuration, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
	return tokenCmd
}

func newModuleCmd() *cobra.Command {
	moduleCmd := &cobra.Command{
		Use:   "module",
		Short: "Manage modules",
	}

	var file string
	var authorID int32
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a module from a YAML manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
			m, err := manifest.ParseYAML(raw)
			if err != nil {
				return err
			}
			module, err := apiv1.NewModule(m, authorID, store.ModuleStatusPublic)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				author, err := s.GetUser(ctx, &store.FindUser{ID: &authorID})
				if err != nil {
					return err
				}
				if author == nil {
					return fmt.Errorf("author %d not found", authorID)
				}
				created, err := s.CreateModule(ctx, module)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "published module %s (id %d, version %s)\n", created.Name, created.ID, created.Version)
				fmt.Fprintf(out, "api key: %s\n", created.APIKey)
				return nil
			})
		},
	}
	publishCmd.Flags().StringVar(&file, "file", "", "path to manifest.yaml")
	publishCmd.Flags().Int32Var(&authorID, "author", 0, "author user id")
	_ = publishCmd.MarkFlagRequired("file")
	_ = publishCmd.MarkFlagRequired("author")
	moduleCmd.AddCommand(publishCmd)
	return moduleCmd
}
