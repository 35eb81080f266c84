package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"accept", ActionAccept, false},
		{"ACCEPT", ActionAccept, false},
		{" reject ", ActionReject, false},
		{"skip", "", true},
		{"", "", true},
	}

	for _, tc := range tcs {
		got, err := ParseAction(tc.in)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidAction, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	f, err := ParseFilter("")
	require.NoError(t, err)
	require.Equal(t, FilterNone, f)

	f, err = ParseFilter("True")
	require.NoError(t, err)
	require.Equal(t, FilterTrue, f)

	_, err = ParseFilter("maybe")
	require.ErrorIs(t, err, ErrInvalidFilter)

	_, ok := FilterNone.Passed()
	require.False(t, ok)
	v, ok := FilterFalse.Passed()
	require.True(t, ok)
	require.Equal(t, "false", v)
}

// TestHistoryRecord_UnmarshalTuple — запись истории приходит кортежем.
func TestHistoryRecord_UnmarshalTuple(t *testing.T) {
	t.Parallel()

	var recs []HistoryRecord
	err := json.Unmarshal([]byte(`[
		["s: a\nr: b", 1737300000.5, ["x.png"], true],
		["plain", 1737200000, [], false, "extra"]
	]`), &recs)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, "s: a\nr: b", recs[0].Text)
	require.Equal(t, Timestamp(1737300000.5), recs[0].Timestamp)
	require.Equal(t, []string{"x.png"}, recs[0].Attachments)
	require.True(t, recs[0].Passed)

	require.Equal(t, Timestamp(1737200000), recs[1].Timestamp)
	require.Empty(t, recs[1].Attachments)
	require.False(t, recs[1].Passed)
}

func TestHistoryRecord_UnmarshalTuple_Invalid(t *testing.T) {
	t.Parallel()

	var rec HistoryRecord
	require.Error(t, json.Unmarshal([]byte(`{"text":"x"}`), &rec))
	require.Error(t, json.Unmarshal([]byte(`["x", 1, []]`), &rec))
	require.Error(t, json.Unmarshal([]byte(`["x", "not-a-number", [], true]`), &rec))
}

func TestTimestamp_StringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, ts := range []Timestamp{1737300000, 1737300000.25, 0.1} {
		got, err := ParseTimestamp(ts.String())
		require.NoError(t, err)
		require.Equal(t, ts, got)
	}
	require.Equal(t, "1737300000", Timestamp(1737300000).String())
}

func TestNewDecision_CopiesIdentityAndMetadata(t *testing.T) {
	t.Parallel()

	item := ReviewItem{Filename: "a.png", MessageIndex: 7, Metadata: json.RawMessage(`{"outgoing":{}}`)}
	d := NewDecision(item, ActionAccept)

	require.NotEmpty(t, d.ID.String())
	require.Equal(t, "a.png", d.Filename)
	require.Equal(t, 7, d.MessageIndex)
	require.JSONEq(t, `{"outgoing":{}}`, string(d.Metadata))
	require.Equal(t, item, d.Item())

	body, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `{"filename":"a.png","message_index":7,"action":"accept","metadata":{"outgoing":{}}}`, string(body))
}

func TestReviewItem_Trade(t *testing.T) {
	t.Parallel()

	item := ReviewItem{Metadata: json.RawMessage(`{
		"outgoing":{"items":[{"id":1,"name":"Vesp"}],"robux_value":0},
		"incoming":{"items":[],"robux_value":70000}
	}`)}

	tr, err := item.Trade()
	require.NoError(t, err)
	require.Equal(t, "Vesp", tr.Outgoing.Items[0].Name)
	require.Equal(t, int64(70000), tr.Incoming.RobuxValue)

	_, err = ReviewItem{Metadata: json.RawMessage(`[]`)}.Trade()
	require.Error(t, err)
}

func TestStats_Processed(t *testing.T) {
	t.Parallel()
	require.Equal(t, 5, Stats{Accepted: 3, Rejected: 2, Remaining: 9}.Processed())
}
