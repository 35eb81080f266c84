package dispatch

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/mocks"
	"github.com/stretchr/testify/require"
)

func TestNewBackendSink_Routing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := mocks.NewMockDecisionPoster(ctrl)
	accept := models.NewDecision(models.ReviewItem{Filename: "a.png"}, models.ActionAccept)
	reject := models.NewDecision(models.ReviewItem{Filename: "b.png"}, models.ActionReject)

	gomock.InOrder(
		p.EXPECT().SubmitAction(gomock.Any(), accept).Return(nil),
		p.EXPECT().SubmitAction(gomock.Any(), reject).Return(nil),
		p.EXPECT().Tag(gomock.Any(), accept).Return(nil),
		p.EXPECT().SubmitAction(gomock.Any(), reject).Return(nil),
	)

	action := NewBackendSink(p, EndpointAction)
	require.NoError(t, action.Submit(context.Background(), accept))
	require.NoError(t, action.Submit(context.Background(), reject))

	tag := NewBackendSink(p, EndpointTag)
	require.NoError(t, tag.Submit(context.Background(), accept))
	require.NoError(t, tag.Submit(context.Background(), reject))
}

func TestParseEndpoint(t *testing.T) {
	t.Parallel()

	ep, err := ParseEndpoint("")
	require.NoError(t, err)
	require.Equal(t, EndpointAction, ep)

	ep, err = ParseEndpoint("tag")
	require.NoError(t, err)
	require.Equal(t, EndpointTag, ep)

	_, err = ParseEndpoint("soap")
	require.ErrorIs(t, err, ErrInvalidEndpoint)
}
