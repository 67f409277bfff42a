package rpcwire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfkiwl/geo-backtracer/internal/btstatus"
)

func TestLocationSampleRoundTrip(t *testing.T) {
	s := LocationSample{UserID: 7, Timestamp: 1_700_000_000_123, Longitude: 12.345, Latitude: -48.765, Altitude: 100.5}
	decoded, err := decodeLocationSample(s.encodeWire())
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestPutLocationRequestRoundTrip(t *testing.T) {
	req := &PutLocationRequest{Locations: []LocationSample{
		{UserID: 1, Timestamp: 1000, Longitude: 1, Latitude: 2, Altitude: 3},
		{UserID: 2, Timestamp: 2000, Longitude: 4, Latitude: 5, Altitude: 6},
	}}
	var decoded PutLocationRequest
	require.NoError(t, decoded.decodeWire(req.encodeWire()))
	require.Equal(t, req.Locations, decoded.Locations)
}

func TestPutLocationRequestRoundTripEmpty(t *testing.T) {
	req := &PutLocationRequest{}
	var decoded PutLocationRequest
	require.NoError(t, decoded.decodeWire(req.encodeWire()))
	require.Empty(t, decoded.Locations)
}

func TestDeleteUserRequestRoundTrip(t *testing.T) {
	req := &DeleteUserRequest{UserID: 99}
	var decoded DeleteUserRequest
	require.NoError(t, decoded.decodeWire(req.encodeWire()))
	require.Equal(t, *req, decoded)
}

func TestGetUserTimelineRequestRoundTrip(t *testing.T) {
	req := &GetUserTimelineRequest{UserID: 123}
	var decoded GetUserTimelineRequest
	require.NoError(t, decoded.decodeWire(req.encodeWire()))
	require.Equal(t, *req, decoded)
}

func TestGetUserTimelineResponseRoundTrip(t *testing.T) {
	resp := &GetUserTimelineResponse{Points: []TimelinePointWire{
		{Timestamp: 1000, Longitude: 1, Latitude: 2, Altitude: 3},
		{Timestamp: 2000, Longitude: 4, Latitude: 5, Altitude: 6},
	}}
	var decoded GetUserTimelineResponse
	require.NoError(t, decoded.decodeWire(resp.encodeWire()))
	require.Equal(t, resp.Points, decoded.Points)
}

func TestGetUserNearbyFolksRequestRoundTrip(t *testing.T) {
	req := &GetUserNearbyFolksRequest{UserID: 55}
	var decoded GetUserNearbyFolksRequest
	require.NoError(t, decoded.decodeWire(req.encodeWire()))
	require.Equal(t, *req, decoded)
}

func TestGetUserNearbyFolksResponseRoundTrip(t *testing.T) {
	resp := &GetUserNearbyFolksResponse{Folks: []FolkWire{
		{UserID: 1, Score: 3},
		{UserID: 2, Score: -1},
	}}
	var decoded GetUserNearbyFolksResponse
	require.NoError(t, decoded.decodeWire(resp.encodeWire()))
	require.Equal(t, resp.Folks, decoded.Folks)
}

func TestGetMixerStatsRoundTrip(t *testing.T) {
	resp := &GetMixerStatsResponse{InsertRate60s: 600, InsertRate10m: 4500, InsertRate1h: 12000}
	var decoded GetMixerStatsResponse
	require.NoError(t, decoded.decodeWire(resp.encodeWire()))
	require.InDelta(t, resp.InsertRate60s, decoded.InsertRate60s, 0.01)
	require.InDelta(t, resp.InsertRate10m, decoded.InsertRate10m, 0.01)
	require.InDelta(t, resp.InsertRate1h, decoded.InsertRate1h, 0.01)
}

func TestGetMixerStatsRequestRoundTripEmpty(t *testing.T) {
	req := &GetMixerStatsRequest{}
	var decoded GetMixerStatsRequest
	require.NoError(t, decoded.decodeWire(req.encodeWire()))
}

func TestInternalBuildBlockRequestRoundTrip(t *testing.T) {
	req := &InternalBuildBlockRequest{TimestampZone: 42, LongZone: 1.5, LatZone: -2.5, UserID: 9}
	var decoded InternalBuildBlockRequest
	require.NoError(t, decoded.decodeWire(req.encodeWire()))
	require.Equal(t, *req, decoded)
}

func TestInternalBuildBlockResponseRoundTrip(t *testing.T) {
	resp := &InternalBuildBlockResponse{
		UserEntries: []EntryWire{{UserID: 1, Timestamp: 100, Longitude: 1, Latitude: 2, Altitude: 3}},
		FolkEntries: []EntryWire{
			{UserID: 2, Timestamp: 200, Longitude: 4, Latitude: 5, Altitude: 6},
			{UserID: 3, Timestamp: 300, Longitude: 7, Latitude: 8, Altitude: 9},
		},
		Found: true,
	}
	var decoded InternalBuildBlockResponse
	require.NoError(t, decoded.decodeWire(resp.encodeWire()))
	require.Equal(t, *resp, decoded)
}

func TestInternalBuildBlockResponseRoundTripNotFound(t *testing.T) {
	resp := &InternalBuildBlockResponse{Found: false}
	var decoded InternalBuildBlockResponse
	require.NoError(t, decoded.decodeWire(resp.encodeWire()))
	require.False(t, decoded.Found)
	require.Empty(t, decoded.UserEntries)
	require.Empty(t, decoded.FolkEntries)
}

func TestCodecMarshalUnmarshalRoundTrip(t *testing.T) {
	var c Codec
	req := &DeleteUserRequest{UserID: 17}
	data, err := c.Marshal(req)
	require.NoError(t, err)

	var decoded DeleteUserRequest
	require.NoError(t, c.Unmarshal(data, &decoded))
	require.Equal(t, *req, decoded)
}

func TestCodecRejectsNonWireMessage(t *testing.T) {
	var c Codec
	_, err := c.Marshal("not a wire message")
	require.Error(t, err)
	require.Equal(t, btstatus.Serialization, btstatus.KindOf(err))

	err = c.Unmarshal([]byte{}, "also not a wire message")
	require.Error(t, err)
	require.Equal(t, btstatus.Serialization, btstatus.KindOf(err))
}

func TestCodecName(t *testing.T) {
	require.Equal(t, ContentSubtype, Codec{}.Name())
}
