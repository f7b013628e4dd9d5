package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"lms/models"
	"lms/models/course"
	"lms/services"

	"github.com/spf13/cobra"
)

func newCreateAdminCommand() *cobra.Command {
	var username, password, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || len(password) < 8 {
				return errors.New("--username and a --password of at least 8 characters are required")
			}
			db, err := connect()
			if err != nil {
				return err
			}
			user, err := services.Register(db, services.RegisterInput{
				Username:  username,
				Password:  password,
				Email:     email,
				FirstName: "Admin",
				Role:      models.RoleAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %q created with id %d\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&password, "password", "", "Password (min 8 characters)")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	return cmd
}

func newGrantCourseCommand() *cobra.Command {
	var (
		userID, categoryID uint
		moduleIDs          []uint
		grantedBy          string
	)

	cmd := &cobra.Command{
		Use:   "grant-course",
		Short: "Grant a course (and optionally modules) to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 || categoryID == 0 {
				return errors.New("--user and --category are required")
			}
			db, err := connect()
			if err != nil {
				return err
			}
			uc, created, err := services.GrantCourse(db, services.GrantRequest{
				UserID:     userID,
				CategoryID: categoryID,
				GrantedBy:  grantedBy,
				ModuleIDs:  moduleIDs,
			})
			if err != nil {
				return err
			}
			state := "already granted"
			if created {
				state = "granted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Course %d %s to user %d (%d modules)\n", uc.CategoryID, state, uc.UserID, len(uc.Modules))
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "User id")
	cmd.Flags().UintVar(&categoryID, "category", 0, "Category id")
	cmd.Flags().UintSliceVar(&moduleIDs, "module", nil, "Module id (repeatable)")
	cmd.Flags().StringVar(&grantedBy, "granted-by", course.GrantedByGift, "payment or gift")
	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with their video counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			var categories []course.Category
			if err := db.Preload("Modules").Order("id").Find(&categories).Error; err != nil {
				return err
			}
			if err := services.AttachVideoCounts(db, categories); err != nil {
				return err
			}

			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(c.ID), 10),
					c.Name,
					strconv.FormatBool(c.IsModular),
					strconv.Itoa(len(c.Modules)),
					strconv.FormatInt(c.VideoCount, 10),
					strconv.FormatFloat(c.Price, 'f', 2, 64),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Modular", "Modules", "Videos", "Price"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

// newDispatchCommand runs the scheduler jobs once, for deployments without the
// in-process scheduler.
func newDispatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Send due scheduled notifications and expire lapsed payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			now := time.Now()
			sent, err := services.DispatchDue(db, now)
			if err != nil {
				return err
			}
			expired, err := services.ExpirePayments(db, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dispatched %d notifications, expired %d payments\n", sent, expired)
			return nil
		},
	}
}
