package model_test

import (
	"testing"

	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestFetchState_String(t *testing.T) {
	gt.Equal(t, model.FetchState{Status: model.FetchIdle}.String(), "idle")
	gt.Equal(t, model.FetchState{Status: model.FetchLoading}.String(), "loading")
	gt.Equal(t, model.FetchState{Status: model.FetchFailed, Reason: "boom"}.String(), "failed: boom")
}

func TestResourceState_Available(t *testing.T) {
	gt.False(t, model.ResourceState{}.Available())
	gt.False(t, model.ResourceState{Status: model.ResourceLoading, URL: "https://x"}.Available())
	gt.True(t, model.ResourceState{Status: model.ResourceLoaded, URL: "https://x", Data: []byte{1}}.Available())
}
