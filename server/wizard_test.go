package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isImageStub(keys ...string) func(string) bool {
	set := map[string]bool{}
	for _, k := range keys {
		set[k] = true
	}
	return func(k string) bool { return set[k] }
}

func TestWizardHappyPath(t *testing.T) {
	reg := NewWizardRegistry(time.Minute)
	z := reg.Create(42)
	isImage := isImageStub("img-a", "img-b")

	require.Equal(t, StepSelectImage, z.State().Step)

	require.NoError(t, z.SelectImage("img-a", isImage))
	assert.Equal(t, StepCompare, z.State().Step)

	require.NoError(t, z.SelectCompare("img-b", isImage))
	assert.Equal(t, StepExtract, z.State().Step)

	require.NoError(t, z.EditItems([]string{"fix header", "", "swap logo"}))
	items, imageKey, compareKey, err := z.submittable()
	require.NoError(t, err)
	assert.Equal(t, []string{"fix header", "swap logo"}, items)
	assert.Equal(t, "img-a", imageKey)
	assert.Equal(t, "img-b", compareKey)
}

func TestWizardStepGating(t *testing.T) {
	reg := NewWizardRegistry(time.Minute)
	z := reg.Create(1)
	isImage := isImageStub("img-a")

	// cannot skip ahead
	assert.ErrorIs(t, z.SelectCompare("", isImage), ErrWizardStep)
	assert.ErrorIs(t, z.EditItems([]string{"x"}), ErrWizardStep)
	assert.ErrorIs(t, z.beginWork(), ErrWizardStep)

	// cannot go back from step 1
	assert.ErrorIs(t, z.Back(), ErrWizardStep)

	// image must exist and be an image
	assert.ErrorIs(t, z.SelectImage("", isImage), ErrNoImage)
	assert.ErrorIs(t, z.SelectImage("not-an-image", isImage), ErrNoImage)

	require.NoError(t, z.SelectImage("img-a", isImage))
	// comparison must differ from the selected image
	assert.ErrorIs(t, z.SelectCompare("img-a", isImage), ErrSameImage)
	// but skipping the comparison is allowed
	require.NoError(t, z.SelectCompare("", isImage))
	assert.Equal(t, StepExtract, z.State().Step)
}

func TestWizardBackKeepsState(t *testing.T) {
	reg := NewWizardRegistry(time.Minute)
	z := reg.Create(1)
	isImage := isImageStub("img-a", "img-b")

	require.NoError(t, z.SelectImage("img-a", isImage))
	require.NoError(t, z.SelectCompare("img-b", isImage))
	z.setItems([]string{"item one"})

	require.NoError(t, z.Back())
	require.NoError(t, z.Back())
	st := z.State()
	assert.Equal(t, StepSelectImage, st.Step)
	assert.Equal(t, "img-a", st.ImageKey)
	assert.Equal(t, "img-b", st.CompareKey)
	assert.Equal(t, []string{"item one"}, st.Items)
}

func TestWizardSubmitRequiresItems(t *testing.T) {
	reg := NewWizardRegistry(time.Minute)
	z := reg.Create(1)
	isImage := isImageStub("img-a")

	require.NoError(t, z.SelectImage("img-a", isImage))
	require.NoError(t, z.SelectCompare("", isImage))

	_, _, _, err := z.submittable()
	assert.ErrorIs(t, err, ErrEmptyItems)

	z.setItems([]string{"   ", "\t"})
	_, _, _, err = z.submittable()
	assert.ErrorIs(t, err, ErrEmptyItems)

	z.setItems([]string{"  ", "real item"})
	items, _, _, err := z.submittable()
	require.NoError(t, err)
	assert.Equal(t, []string{"real item"}, items)
}

func TestWizardBusyGate(t *testing.T) {
	reg := NewWizardRegistry(time.Minute)
	z := reg.Create(1)
	isImage := isImageStub("img-a")

	require.NoError(t, z.SelectImage("img-a", isImage))
	require.NoError(t, z.SelectCompare("", isImage))

	require.NoError(t, z.beginWork())
	assert.ErrorIs(t, z.beginWork(), ErrWizardBusy)
	assert.ErrorIs(t, z.Back(), ErrWizardBusy)
	assert.ErrorIs(t, z.EditItems([]string{"x"}), ErrWizardBusy)

	z.endWork()
	require.NoError(t, z.beginWork())
	z.endWork()
}

func TestWizardRegistryExpiry(t *testing.T) {
	reg := NewWizardRegistry(10 * time.Millisecond)
	z := reg.Create(1)

	got, err := reg.Get(z.ID)
	require.NoError(t, err)
	assert.Same(t, z, got)

	time.Sleep(20 * time.Millisecond)
	_, err = reg.Get(z.ID)
	assert.ErrorIs(t, err, ErrWizardFound)

	_, err = reg.Get("no-such-id")
	assert.ErrorIs(t, err, ErrWizardFound)
}
