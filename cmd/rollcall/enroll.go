package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newEnrollCmd() *cobra.Command {
	var employeeID, imagePath string

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Register an employee's face from an image",
		Long: `Detects exactly one face in --image and stores its embedding for --employee,
replacing any earlier registration.`,
		Example: `  rollcall enroll --employee EMP001 --image ana.jpg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Faces.EnrollImage(cmd.Context(), employeeID, data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "enrolled %s (%d dimensions, %s)\n",
				rec.EmployeeID, rec.Dimension(), a.Detector.Model())
			return nil
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee", "", "Employee identifier")
	cmd.Flags().StringVar(&imagePath, "image", "", "Image file containing one face")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}
