package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premiumcars/listingsheet/internal/model"
)

func storedRecord() *model.Record {
	desc := "Nette auto"
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.Record{
		ID:          "r1",
		Title:       "Audi A4",
		Description: &desc,
		Content: model.Content{
			Price:        "25000",
			Color:        "Zwart",
			FuelType:     "Benzine",
			Transmission: "Automaat",
			Images:       []string{"aaaa", "bbbb"},
			CreatedAt:    &created,
		},
	}
}

func TestNew(t *testing.T) {
	s := New()
	assert.Equal(t, ModeCreate, s.Mode())
	assert.Equal(t, PhaseViewing, s.Phase())
	assert.Empty(t, s.RecordID())
	assert.NotNil(t, s.Images())
	assert.False(t, s.Dirty())
}

func TestFromRecord(t *testing.T) {
	s := FromRecord(storedRecord())

	assert.Equal(t, ModeEdit, s.Mode())
	assert.Equal(t, "r1", s.RecordID())
	assert.Equal(t, Fields{
		Title:        "Audi A4",
		Description:  "Nette auto",
		Price:        "25000",
		Color:        "Zwart",
		FuelType:     "Benzine",
		Transmission: "Automaat",
	}, s.Fields())
	assert.Equal(t, []string{"aaaa", "bbbb"}, s.Images())
}

func TestDispatch_DoesNotMutatePrevious(t *testing.T) {
	s0 := FromRecord(storedRecord())

	s1 := s0.Dispatch(SetTitle{Value: "Audi A6"})
	s2 := s1.Dispatch(AddImages{Images: []string{"cccc"}})
	s3 := s2.Dispatch(RemoveImage{Index: 0})

	assert.Equal(t, "Audi A4", s0.Fields().Title)
	assert.Equal(t, PhaseViewing, s0.Phase())
	assert.Equal(t, []string{"aaaa", "bbbb"}, s0.Images())

	assert.Equal(t, "Audi A6", s1.Fields().Title)
	assert.Equal(t, []string{"aaaa", "bbbb"}, s1.Images())
	assert.Equal(t, []string{"aaaa", "bbbb", "cccc"}, s2.Images())
	assert.Equal(t, []string{"bbbb", "cccc"}, s3.Images())
}

func TestImages_ReturnsCopy(t *testing.T) {
	s := FromRecord(storedRecord())
	imgs := s.Images()
	imgs[0] = "zzzz"
	assert.Equal(t, "aaaa", s.Images()[0])
}

func TestFieldActions(t *testing.T) {
	s := New().
		Dispatch(SetTitle{Value: "BMW 3"}).
		Dispatch(SetDescription{Value: "Sportief"}).
		Dispatch(SetPrice{Value: "30000"}).
		Dispatch(SetColor{Value: "Blauw"}).
		Dispatch(SetFuelType{Value: "Diesel"}).
		Dispatch(SetTransmission{Value: "Handgeschakeld"})

	assert.Equal(t, PhaseEditing, s.Phase())
	assert.Equal(t, Fields{
		Title:        "BMW 3",
		Description:  "Sportief",
		Price:        "30000",
		Color:        "Blauw",
		FuelType:     "Diesel",
		Transmission: "Handgeschakeld",
	}, s.Fields())
	assert.True(t, s.Dirty())
}

func TestRemoveImage_OutOfRange(t *testing.T) {
	s := FromRecord(storedRecord())

	for _, idx := range []int{-1, 2, 100} {
		next := s.Dispatch(RemoveImage{Index: idx})
		assert.Equal(t, s.Images(), next.Images())
		assert.Equal(t, PhaseViewing, next.Phase())
	}
}

func TestSaveCycle_Success(t *testing.T) {
	s := New().Dispatch(SetTitle{Value: "Audi A4"})
	s = s.Dispatch(Save{})
	require.Equal(t, PhaseSaving, s.Phase())

	ignored := s.Dispatch(Save{})
	assert.Equal(t, PhaseSaving, ignored.Phase())

	frozen := s.Dispatch(SetTitle{Value: "changed mid-save"})
	assert.Equal(t, "Audi A4", frozen.Fields().Title)

	saved := storedRecord()
	s = s.Dispatch(SaveSucceeded{Record: saved})
	assert.Equal(t, PhaseViewing, s.Phase())
	assert.Equal(t, ModeEdit, s.Mode())
	assert.Equal(t, "r1", s.RecordID())
	assert.Equal(t, []string{"aaaa", "bbbb"}, s.Images())
	assert.False(t, s.Dirty())
}

func TestSaveCycle_FailureKeepsFields(t *testing.T) {
	s := FromRecord(storedRecord()).
		Dispatch(SetPrice{Value: "27500"}).
		Dispatch(Save{}).
		Dispatch(SaveFailed{})

	assert.Equal(t, PhaseError, s.Phase())
	assert.Equal(t, MsgSaveFailed, s.Error())
	assert.Equal(t, "27500", s.Fields().Price)

	s = s.Dispatch(SetColor{Value: "Rood"})
	assert.Equal(t, PhaseEditing, s.Phase())
	assert.Empty(t, s.Error())

	custom := s.Dispatch(Save{}).Dispatch(SaveFailed{Message: "server down"})
	assert.Equal(t, "server down", custom.Error())
}

func TestSave_RequiresTitle(t *testing.T) {
	s := New().Dispatch(SetPrice{Value: "1000"}).Dispatch(Save{})
	assert.Equal(t, PhaseError, s.Phase())
	assert.Equal(t, MsgTitleRequired, s.Error())
}

func TestSaveResults_IgnoredOutsideSaving(t *testing.T) {
	s := New().Dispatch(SetTitle{Value: "x"})
	assert.Equal(t, s, s.Dispatch(SaveSucceeded{Record: storedRecord()}))
	assert.Equal(t, s, s.Dispatch(SaveFailed{}))
}

func TestReset(t *testing.T) {
	s := FromRecord(storedRecord()).
		Dispatch(SetTitle{Value: "Other"}).
		Dispatch(RemoveImage{Index: 0}).
		Dispatch(Reset{})

	assert.Equal(t, PhaseViewing, s.Phase())
	assert.Equal(t, "Audi A4", s.Fields().Title)
	assert.Equal(t, []string{"aaaa", "bbbb"}, s.Images())
	assert.False(t, s.Dirty())
}

func TestPayload(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	created := New().
		Dispatch(SetTitle{Value: "  Audi A4 "}).
		Dispatch(SetPrice{Value: "25000"}).
		Payload(now)
	assert.Equal(t, "  Audi A4 ", created.Title)
	assert.Equal(t, "  Audi A4 ", created.Content.Title)
	require.NotNil(t, created.Description)
	assert.Equal(t, "", *created.Description)
	require.NotNil(t, created.Content.CreatedAt)
	assert.Equal(t, now, *created.Content.CreatedAt)
	assert.NotNil(t, created.Content.Images)

	edited := FromRecord(storedRecord()).Dispatch(SetColor{Value: "Wit"}).Payload(now)
	require.NotNil(t, edited.Description)
	assert.Equal(t, "Nette auto", *edited.Description)
	assert.Equal(t, "Nette auto", edited.Content.Description)
	assert.Equal(t, "Wit", edited.Content.Color)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), *edited.Content.CreatedAt)

	s := FromRecord(storedRecord())
	p := s.Payload(now)
	p.Content.Images[0] = "zzzz"
	assert.Equal(t, "aaaa", s.Images()[0], "payload must not alias state")
}
