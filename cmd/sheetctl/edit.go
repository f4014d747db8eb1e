package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/premiumcars/listingsheet/internal/client"
	"github.com/premiumcars/listingsheet/internal/form"
	"github.com/premiumcars/listingsheet/internal/model"
)

// fieldFlags are the edit flags shared by create and edit.
type fieldFlags struct {
	title        string
	description  string
	price        string
	color        string
	fuel         string
	transmission string
	images       []string
	remove       []int
}

func (f *fieldFlags) register(fs *pflag.FlagSet, withRemove bool) {
	fs.StringVar(&f.title, "title", "", "Title")
	fs.StringVar(&f.description, "description", "", "Description")
	fs.StringVar(&f.price, "price", "", "Price, e.g. 25000")
	fs.StringVar(&f.color, "color", "", "Color")
	fs.StringVar(&f.fuel, "fuel", "", "Fuel type")
	fs.StringVar(&f.transmission, "transmission", "", "Transmission")
	fs.StringArrayVar(&f.images, "image", nil, "Image file to append (repeatable)")
	if withRemove {
		fs.IntSliceVar(&f.remove, "remove-image", nil, "Index of an image to remove (repeatable)")
	}
}

// actions turns the changed flags into form actions. Removals run from the
// highest index down so earlier indexes stay valid.
func (f *fieldFlags) actions(fs *pflag.FlagSet) []form.Action {
	var actions []form.Action
	set := func(name string, a form.Action) {
		if fs.Changed(name) {
			actions = append(actions, a)
		}
	}
	set("title", form.SetTitle{Value: f.title})
	set("description", form.SetDescription{Value: f.description})
	set("price", form.SetPrice{Value: f.price})
	set("color", form.SetColor{Value: f.color})
	set("fuel", form.SetFuelType{Value: f.fuel})
	set("transmission", form.SetTransmission{Value: f.transmission})

	remove := append([]int(nil), f.remove...)
	sort.Sort(sort.Reverse(sort.IntSlice(remove)))
	for i, idx := range remove {
		if i > 0 && idx == remove[i-1] {
			continue
		}
		actions = append(actions, form.RemoveImage{Index: idx})
	}
	return actions
}

func newCreateCmd(a *app) *cobra.Command {
	var flags fieldFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a listing sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(true)
			if err != nil {
				return err
			}

			state, err := applyEdits(cmd.Context(), form.New(), &flags, cmd.Flags())
			if err != nil {
				return err
			}
			rec, err := save(cmd.Context(), a.logger, c, state)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Created %s (%s)\n", rec.ID, rec.Title)
			return nil
		},
	}
	flags.register(cmd.Flags(), false)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var flags fieldFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields or images of a listing sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(true)
			if err != nil {
				return err
			}
			rec, err := c.GetRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			state, err := applyEdits(cmd.Context(), form.FromRecord(rec), &flags, cmd.Flags())
			if err != nil {
				return err
			}
			if !state.Dirty() {
				fmt.Fprintln(a.out, "Nothing to change")
				return nil
			}

			rec, err = save(cmd.Context(), a.logger, c, state)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s (%s)\n", rec.ID, rec.Title)
			return nil
		},
	}
	flags.register(cmd.Flags(), true)
	return cmd
}

// applyEdits runs the flag edits through the form and appends the encoded
// images. Either all images are added or none.
func applyEdits(ctx context.Context, state form.State, flags *fieldFlags, fs *pflag.FlagSet) (form.State, error) {
	for _, action := range flags.actions(fs) {
		state = state.Dispatch(action)
	}

	if len(flags.images) > 0 {
		encoded, err := form.EncodeImages(ctx, form.OpenFile, flags.images)
		if err != nil {
			return state, fmt.Errorf("%s: %w", form.MsgUploadFailed, err)
		}
		state = state.Dispatch(form.AddImages{Images: encoded})
	}
	return state, nil
}

// save drives the form through a save cycle against the API.
func save(ctx context.Context, logger *slog.Logger, c *client.Client, state form.State) (*model.Record, error) {
	state = state.Dispatch(form.Save{})
	if state.Phase() == form.PhaseError {
		return nil, errors.New(state.Error())
	}

	draft := state.Payload(time.Now())

	var (
		rec *model.Record
		err error
	)
	if state.Mode() == form.ModeCreate {
		rec, err = c.CreateRecord(ctx, draft)
	} else {
		rec, err = c.UpdateRecord(ctx, state.RecordID(), draft)
	}
	if err != nil {
		state = state.Dispatch(form.SaveFailed{})
		logger.Debug("save failed", slog.String("mode", state.Mode().String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", state.Error(), err)
	}

	state = state.Dispatch(form.SaveSucceeded{Record: rec})
	logger.Debug("saved", slog.String("record_id", state.RecordID()), slog.Int("images", state.ImageCount()))
	return rec, nil
}
