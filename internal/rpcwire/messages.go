package rpcwire

import "github.com/mfkiwl/geo-backtracer/internal/keycodec"

// LocationSample is one GPS reading carried in a PutLocationRequest.
type LocationSample struct {
	UserID    uint64
	Timestamp int64
	Longitude float32
	Latitude  float32
	Altitude  float32
}

const (
	tagSampleUserID    byte = 1
	tagSampleTimestamp byte = 2
	tagSampleLongitude byte = 3
	tagSampleLatitude  byte = 4
	tagSampleAltitude  byte = 5
)

func (s LocationSample) encodeWire() []byte {
	w := keycodec.NewWriter(32)
	w.PutUint64(tagSampleUserID, s.UserID)
	w.PutUint64(tagSampleTimestamp, uint64(s.Timestamp))
	w.PutFloat32(tagSampleLongitude, s.Longitude)
	w.PutFloat32(tagSampleLatitude, s.Latitude)
	w.PutFloat32(tagSampleAltitude, s.Altitude)
	return w.Bytes()
}

func decodeLocationSample(data []byte) (LocationSample, error) {
	var s LocationSample
	r := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return s, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagSampleUserID:
			s.UserID, err = r.Uint64()
		case tagSampleTimestamp:
			var v uint64
			v, err = r.Uint64()
			s.Timestamp = int64(v)
		case tagSampleLongitude:
			s.Longitude, err = r.Float32()
		case tagSampleLatitude:
			s.Latitude, err = r.Float32()
		case tagSampleAltitude:
			s.Altitude, err = r.Float32()
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

// PutLocationRequest carries a batch of samples to ingest.
type PutLocationRequest struct {
	Locations []LocationSample
}

const tagPutLocationSample byte = 1

func (r *PutLocationRequest) encodeWire() []byte {
	w := keycodec.NewWriter(64)
	for _, s := range r.Locations {
		w.PutBytes(tagPutLocationSample, s.encodeWire())
	}
	return w.Bytes()
}

func (r *PutLocationRequest) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	r.Locations = nil
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if tag != tagPutLocationSample {
			if err := rd.Skip(wt); err != nil {
				return err
			}
			continue
		}
		raw, err := rd.Bytes()
		if err != nil {
			return err
		}
		s, err := decodeLocationSample(raw)
		if err != nil {
			return err
		}
		r.Locations = append(r.Locations, s)
	}
	return nil
}

// PutLocationResponse is empty; success is the absence of an RPC error.
type PutLocationResponse struct{}

func (r *PutLocationResponse) encodeWire() []byte      { return nil }
func (r *PutLocationResponse) decodeWire([]byte) error { return nil }

// DeleteUserRequest names the user whose rows should be removed.
type DeleteUserRequest struct {
	UserID uint64
}

const tagDeleteUserUserID byte = 1

func (r *DeleteUserRequest) encodeWire() []byte {
	w := keycodec.NewWriter(8)
	w.PutUint64(tagDeleteUserUserID, r.UserID)
	return w.Bytes()
}

func (r *DeleteUserRequest) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if tag == tagDeleteUserUserID {
			r.UserID, err = rd.Uint64()
		} else {
			err = rd.Skip(wt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteUserResponse is empty.
type DeleteUserResponse struct{}

func (r *DeleteUserResponse) encodeWire() []byte      { return nil }
func (r *DeleteUserResponse) decodeWire([]byte) error { return nil }

// GetUserTimelineRequest names the user whose timeline to reconstruct.
type GetUserTimelineRequest struct {
	UserID uint64
}

const tagTimelineReqUserID byte = 1

func (r *GetUserTimelineRequest) encodeWire() []byte {
	w := keycodec.NewWriter(8)
	w.PutUint64(tagTimelineReqUserID, r.UserID)
	return w.Bytes()
}

func (r *GetUserTimelineRequest) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if tag == tagTimelineReqUserID {
			r.UserID, err = rd.Uint64()
		} else {
			err = rd.Skip(wt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// TimelinePointWire is one reconstructed sample on the wire.
type TimelinePointWire struct {
	Timestamp int64
	Longitude float32
	Latitude  float32
	Altitude  float32
}

const (
	tagPointTimestamp byte = 1
	tagPointLongitude byte = 2
	tagPointLatitude  byte = 3
	tagPointAltitude  byte = 4
)

func (p TimelinePointWire) encodeWire() []byte {
	w := keycodec.NewWriter(24)
	w.PutUint64(tagPointTimestamp, uint64(p.Timestamp))
	w.PutFloat32(tagPointLongitude, p.Longitude)
	w.PutFloat32(tagPointLatitude, p.Latitude)
	w.PutFloat32(tagPointAltitude, p.Altitude)
	return w.Bytes()
}

func decodeTimelinePointWire(data []byte) (TimelinePointWire, error) {
	var p TimelinePointWire
	r := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return p, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagPointTimestamp:
			var v uint64
			v, err = r.Uint64()
			p.Timestamp = int64(v)
		case tagPointLongitude:
			p.Longitude, err = r.Float32()
		case tagPointLatitude:
			p.Latitude, err = r.Float32()
		case tagPointAltitude:
			p.Altitude, err = r.Float32()
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

// GetUserTimelineResponse carries the reconstructed points.
type GetUserTimelineResponse struct {
	Points []TimelinePointWire
}

const tagTimelineRespPoint byte = 1

func (r *GetUserTimelineResponse) encodeWire() []byte {
	w := keycodec.NewWriter(64)
	for _, p := range r.Points {
		w.PutBytes(tagTimelineRespPoint, p.encodeWire())
	}
	return w.Bytes()
}

func (r *GetUserTimelineResponse) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	r.Points = nil
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if tag != tagTimelineRespPoint {
			if err := rd.Skip(wt); err != nil {
				return err
			}
			continue
		}
		raw, err := rd.Bytes()
		if err != nil {
			return err
		}
		p, err := decodeTimelinePointWire(raw)
		if err != nil {
			return err
		}
		r.Points = append(r.Points, p)
	}
	return nil
}

// GetUserNearbyFolksRequest names the user to correlate.
type GetUserNearbyFolksRequest struct {
	UserID uint64
}

const tagFolksReqUserID byte = 1

func (r *GetUserNearbyFolksRequest) encodeWire() []byte {
	w := keycodec.NewWriter(8)
	w.PutUint64(tagFolksReqUserID, r.UserID)
	return w.Bytes()
}

func (r *GetUserNearbyFolksRequest) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if tag == tagFolksReqUserID {
			r.UserID, err = rd.Uint64()
		} else {
			err = rd.Skip(wt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// FolkWire is one correlation result on the wire.
type FolkWire struct {
	UserID uint64
	Score  int64
}

const (
	tagFolkUserID byte = 1
	tagFolkScore  byte = 2
)

func (f FolkWire) encodeWire() []byte {
	w := keycodec.NewWriter(16)
	w.PutUint64(tagFolkUserID, f.UserID)
	w.PutUint64(tagFolkScore, uint64(f.Score))
	return w.Bytes()
}

func decodeFolkWire(data []byte) (FolkWire, error) {
	var f FolkWire
	r := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return f, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagFolkUserID:
			f.UserID, err = r.Uint64()
		case tagFolkScore:
			var v uint64
			v, err = r.Uint64()
			f.Score = int64(v)
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

// GetUserNearbyFolksResponse carries the correlation results.
type GetUserNearbyFolksResponse struct {
	Folks []FolkWire
}

const tagFolksRespFolk byte = 1

func (r *GetUserNearbyFolksResponse) encodeWire() []byte {
	w := keycodec.NewWriter(32)
	for _, f := range r.Folks {
		w.PutBytes(tagFolksRespFolk, f.encodeWire())
	}
	return w.Bytes()
}

func (r *GetUserNearbyFolksResponse) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	r.Folks = nil
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if tag != tagFolksRespFolk {
			if err := rd.Skip(wt); err != nil {
				return err
			}
			continue
		}
		raw, err := rd.Bytes()
		if err != nil {
			return err
		}
		f, err := decodeFolkWire(raw)
		if err != nil {
			return err
		}
		r.Folks = append(r.Folks, f)
	}
	return nil
}

// GetMixerStatsRequest is empty.
type GetMixerStatsRequest struct{}

func (r *GetMixerStatsRequest) encodeWire() []byte      { return nil }
func (r *GetMixerStatsRequest) decodeWire([]byte) error { return nil }

// GetMixerStatsResponse carries the three sliding-window insert rates.
type GetMixerStatsResponse struct {
	InsertRate60s float64
	InsertRate10m float64
	InsertRate1h  float64
}

const (
	tagStats60s byte = 1
	tagStats10m byte = 2
	tagStats1h  byte = 3
)

func (r *GetMixerStatsResponse) encodeWire() []byte {
	w := keycodec.NewWriter(24)
	w.PutFloat32(tagStats60s, float32(r.InsertRate60s))
	w.PutFloat32(tagStats10m, float32(r.InsertRate10m))
	w.PutFloat32(tagStats1h, float32(r.InsertRate1h))
	return w.Bytes()
}

func (r *GetMixerStatsResponse) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var v float32
		switch tag {
		case tagStats60s:
			v, err = rd.Float32()
			r.InsertRate60s = float64(v)
		case tagStats10m:
			v, err = rd.Float32()
			r.InsertRate10m = float64(v)
		case tagStats1h:
			v, err = rd.Float32()
			r.InsertRate1h = float64(v)
		default:
			err = rd.Skip(wt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// InternalBuildBlockRequest identifies the cell and target user for a
// worker-internal block materialization call.
type InternalBuildBlockRequest struct {
	TimestampZone int64
	LongZone      float32
	LatZone       float32
	UserID        uint64
}

const (
	tagBlockReqTSZone   byte = 1
	tagBlockReqLongZone byte = 2
	tagBlockReqLatZone  byte = 3
	tagBlockReqUserID   byte = 4
)

func (r *InternalBuildBlockRequest) encodeWire() []byte {
	w := keycodec.NewWriter(24)
	w.PutUint64(tagBlockReqTSZone, uint64(r.TimestampZone))
	w.PutFloat32(tagBlockReqLongZone, r.LongZone)
	w.PutFloat32(tagBlockReqLatZone, r.LatZone)
	w.PutUint64(tagBlockReqUserID, r.UserID)
	return w.Bytes()
}

func (r *InternalBuildBlockRequest) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		switch tag {
		case tagBlockReqTSZone:
			var v uint64
			v, err = rd.Uint64()
			r.TimestampZone = int64(v)
		case tagBlockReqLongZone:
			r.LongZone, err = rd.Float32()
		case tagBlockReqLatZone:
			r.LatZone, err = rd.Float32()
		case tagBlockReqUserID:
			r.UserID, err = rd.Uint64()
		default:
			err = rd.Skip(wt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// EntryWire is one materialized timeline row on the wire.
type EntryWire struct {
	UserID    uint64
	Timestamp int64
	Longitude float32
	Latitude  float32
	Altitude  float32
}

const (
	tagEntryUserID    byte = 1
	tagEntryTimestamp byte = 2
	tagEntryLongitude byte = 3
	tagEntryLatitude  byte = 4
	tagEntryAltitude  byte = 5
)

func (e EntryWire) encodeWire() []byte {
	w := keycodec.NewWriter(32)
	w.PutUint64(tagEntryUserID, e.UserID)
	w.PutUint64(tagEntryTimestamp, uint64(e.Timestamp))
	w.PutFloat32(tagEntryLongitude, e.Longitude)
	w.PutFloat32(tagEntryLatitude, e.Latitude)
	w.PutFloat32(tagEntryAltitude, e.Altitude)
	return w.Bytes()
}

func decodeEntryWire(data []byte) (EntryWire, error) {
	var e EntryWire
	r := keycodec.NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return e, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagEntryUserID:
			e.UserID, err = r.Uint64()
		case tagEntryTimestamp:
			var v uint64
			v, err = r.Uint64()
			e.Timestamp = int64(v)
		case tagEntryLongitude:
			e.Longitude, err = r.Float32()
		case tagEntryLatitude:
			e.Latitude, err = r.Float32()
		case tagEntryAltitude:
			e.Altitude, err = r.Float32()
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return e, err
		}
	}
	return e, nil
}

// InternalBuildBlockResponse carries the materialized block.
type InternalBuildBlockResponse struct {
	UserEntries []EntryWire
	FolkEntries []EntryWire
	Found       bool
}

const (
	tagBlockRespUser  byte = 1
	tagBlockRespFolk  byte = 2
	tagBlockRespFound byte = 3
)

func (r *InternalBuildBlockResponse) encodeWire() []byte {
	w := keycodec.NewWriter(64)
	for _, e := range r.UserEntries {
		w.PutBytes(tagBlockRespUser, e.encodeWire())
	}
	for _, e := range r.FolkEntries {
		w.PutBytes(tagBlockRespFolk, e.encodeWire())
	}
	found := uint64(0)
	if r.Found {
		found = 1
	}
	w.PutUint64(tagBlockRespFound, found)
	return w.Bytes()
}

func (r *InternalBuildBlockResponse) decodeWire(data []byte) error {
	rd := keycodec.NewReader(data)
	r.UserEntries = nil
	r.FolkEntries = nil
	for {
		tag, wt, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		switch tag {
		case tagBlockRespUser:
			var raw []byte
			raw, err = rd.Bytes()
			if err == nil {
				var e EntryWire
				e, err = decodeEntryWire(raw)
				r.UserEntries = append(r.UserEntries, e)
			}
		case tagBlockRespFolk:
			var raw []byte
			raw, err = rd.Bytes()
			if err == nil {
				var e EntryWire
				e, err = decodeEntryWire(raw)
				r.FolkEntries = append(r.FolkEntries, e)
			}
		case tagBlockRespFound:
			var v uint64
			v, err = rd.Uint64()
			r.Found = v != 0
		default:
			err = rd.Skip(wt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
