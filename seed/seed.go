// Package seed loads demonstration accounts and tasks.
package seed

import (
	"context"
	"fmt"

	domaintask "github.com/example/taskmanager/domain/task"
	domainuser "github.com/example/taskmanager/domain/user"
	"github.com/example/taskmanager/logutil"
	"github.com/example/taskmanager/modules/auth"
	"github.com/example/taskmanager/modules/task"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Password is shared by every seeded account.
const Password = "password123"

// Account is a seeded user with its tasks.
type Account struct {
	Email string
	Name  string
	Tasks []Task
}

// Task is a seeded task.
type Task struct {
	Title       string
	Description string
	Status      domaintask.Status
}

// Accounts is the demonstration data set.
var Accounts = []Account{
	{
		Email: "john@example.com",
		Name:  "John Doe",
		Tasks: []Task{
			{"Complete Project Proposal", "Draft the initial project proposal for the client.", domaintask.StatusCompleted},
			{"Prepare for Sprint Planning", "Review the backlog and prioritize tasks for the next sprint.", domaintask.StatusInProgress},
			{"Update Documentation", "Update the API documentation with the latest changes.", domaintask.StatusPending},
		},
	},
	{
		Email: "jane@example.com",
		Name:  "Jane Smith",
		Tasks: []Task{
			{"Bug Bash", "Join the bug bash to find and report issues.", domaintask.StatusPending},
			{"Refactor Auth Logic", "Clean up the authentication middleware and controllers.", domaintask.StatusInProgress},
		},
	},
}

// Run removes all tasks and users and inserts Accounts. Everything happens
// in one transaction. Progress is logged to the logger carried by ctx.
func Run(ctx context.Context, db *gorm.DB, hasher *auth.PasswordHasher) error {
	log := logutil.GetOrDefault(ctx)
	hashes := make([]string, len(Accounts))
	g, _ := errgroup.WithContext(ctx)
	for i := range Accounts {
		g.Go(func() error {
			h, err := hasher.Hash(Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", Accounts[i].Email, err)
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := auth.NewUserRepository(tx)
		tasks := task.NewTaskRepository(tx)

		if err := tasks.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		if err := users.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}

		for i, acct := range Accounts {
			name := acct.Name
			u := &domainuser.User{
				ID:           uuid.NewString(),
				Email:        acct.Email,
				PasswordHash: hashes[i],
				Name:         &name,
			}
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("create user %s: %w", acct.Email, err)
			}

			for _, t := range acct.Tasks {
				desc := t.Description
				if err := tasks.Create(ctx, &domaintask.Task{
					ID:          uuid.NewString(),
					Title:       t.Title,
					Description: &desc,
					Status:      t.Status,
					UserID:      u.ID,
				}); err != nil {
					return fmt.Errorf("create task %q: %w", t.Title, err)
				}
			}

			log.Info().
				Str("email", acct.Email).
				Int("tasks", len(acct.Tasks)).
				Msg("Seeded user")
		}
		return nil
	})
}
