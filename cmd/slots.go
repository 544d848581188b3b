package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/slots"
)

func newSlotsCmd() *cobra.Command {
	var (
		dates        []string
		offset       string
		workdayStart int
		workdayEnd   int
		slotLength   int
		buffer       int
		account      string
		noCalendar   bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Compute free meeting slots for a set of dates",
		Long: `Compute conflict-free meeting slots for one or more dates and print
them. Busy intervals are fetched from the account's calendar unless
--no-calendar is given, in which case the whole workday is free.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			spec := slots.Spec{
				Dates:             dates,
				Offset:            offset,
				WorkdayStart:      workdayStart,
				WorkdayEnd:        workdayEnd,
				SlotLengthMinutes: slotLength,
				BufferMinutes:     buffer,
			}
			if err := spec.Validate(); err != nil {
				return fmt.Errorf("invalid slot parameters: %w", err)
			}

			var busy []slots.BusyInterval
			if !noCalendar {
				client, err := calendar.NewClientForAccount(ctx, account)
				if err != nil {
					return fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
				}
				busy, err = client.BusyIntervals(ctx, dates, offset)
				if err != nil {
					return fmt.Errorf("failed to fetch busy intervals: %w", err)
				}
			}

			free, err := slots.ComputeFreeSlotsGaps(busy, spec)
			if err != nil {
				return err
			}
			if len(free) == 0 {
				fmt.Println("No free slots on the requested dates.")
				return nil
			}

			loc, err := slots.ParseOffset(offset)
			if err != nil {
				return err
			}
			fmt.Printf("Found %d free slots:\n\n%s", len(free), slots.FormatList(free, loc))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&dates, "dates", nil, "Dates to consider in YYYY-MM-DD form (comma-separated or repeated)")
	cmd.Flags().StringVar(&offset, "offset", "+00:00", "Fixed UTC offset for the workday, e.g. '-07:00'")
	cmd.Flags().IntVar(&workdayStart, "workday-start", 9, "Workday start hour, 0-23")
	cmd.Flags().IntVar(&workdayEnd, "workday-end", 18, "Workday end hour, 1-24")
	cmd.Flags().IntVar(&slotLength, "slot-length", 30, "Slot length in minutes")
	cmd.Flags().IntVar(&buffer, "buffer", 5, "Buffer around busy intervals in minutes")
	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().BoolVar(&noCalendar, "no-calendar", false, "Skip the calendar lookup and treat the whole workday as free")
	_ = cmd.MarkFlagRequired("dates")

	return cmd
}
