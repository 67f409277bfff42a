package keycodec

// Field tags for the timeline table's key and value records. Tags are part
// of the frozen on-disk contract once a comparator name ships: never
// renumber a tag that might already be on disk under that name.
const (
	tagTimestampLo byte = 1
	tagLongZone    byte = 2
	tagLatZone     byte = 3
	tagUserID      byte = 4
	tagTimestampHi byte = 5

	tagLongitude byte = 1
	tagLatitude  byte = 2
	tagAltitude  byte = 3

	tagRevUserID   byte = 1
	tagRevTsZone   byte = 2
	tagRevLongZone byte = 3
	tagRevLatZone  byte = 4
)

// TimelineKey is the decoded form of a by-timeline row's key.
type TimelineKey struct {
	TimestampLo uint64
	LongZone    float32
	LatZone     float32
	UserID      uint64
	TimestampHi uint64
}

// Encode serializes k into the tagged-field record comparators operate on.
func (k TimelineKey) Encode() []byte {
	w := NewWriter(40)
	w.PutUint64(tagTimestampLo, k.TimestampLo)
	w.PutFloat32(tagLongZone, k.LongZone)
	w.PutFloat32(tagLatZone, k.LatZone)
	w.PutUint64(tagUserID, k.UserID)
	w.PutUint64(tagTimestampHi, k.TimestampHi)
	return w.Bytes()
}

// DecodeTimelineKey parses a record produced by TimelineKey.Encode.
func DecodeTimelineKey(data []byte) (TimelineKey, error) {
	var k TimelineKey
	r := NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return k, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagTimestampLo:
			k.TimestampLo, err = r.Uint64()
		case tagLongZone:
			k.LongZone, err = r.Float32()
		case tagLatZone:
			k.LatZone, err = r.Float32()
		case tagUserID:
			k.UserID, err = r.Uint64()
		case tagTimestampHi:
			k.TimestampHi, err = r.Uint64()
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return k, err
		}
	}
	return k, nil
}

// Timestamp reconstructs the original event timestamp from its split form.
func (k TimelineKey) Timestamp() int64 {
	return int64(k.TimestampLo)*1000 + int64(k.TimestampHi)
}

// TimelineValue is the decoded form of a by-timeline row's value: the exact
// (unquantised) coordinates of the sample.
type TimelineValue struct {
	Longitude float32
	Latitude  float32
	Altitude  float32
}

// Encode serializes v.
func (v TimelineValue) Encode() []byte {
	w := NewWriter(16)
	w.PutFloat32(tagLongitude, v.Longitude)
	w.PutFloat32(tagLatitude, v.Latitude)
	w.PutFloat32(tagAltitude, v.Altitude)
	return w.Bytes()
}

// DecodeTimelineValue parses a record produced by TimelineValue.Encode.
func DecodeTimelineValue(data []byte) (TimelineValue, error) {
	var v TimelineValue
	r := NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return v, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagLongitude:
			v.Longitude, err = r.Float32()
		case tagLatitude:
			v.Latitude, err = r.Float32()
		case tagAltitude:
			v.Altitude, err = r.Float32()
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return v, err
		}
	}
	return v, nil
}

// ReverseKey is the decoded form of a by-user row's key.
type ReverseKey struct {
	UserID        uint64
	TimestampZone uint64
	LongZone      float32
	LatZone       float32
}

// Encode serializes k.
func (k ReverseKey) Encode() []byte {
	w := NewWriter(32)
	w.PutUint64(tagRevUserID, k.UserID)
	w.PutUint64(tagRevTsZone, k.TimestampZone)
	w.PutFloat32(tagRevLongZone, k.LongZone)
	w.PutFloat32(tagRevLatZone, k.LatZone)
	return w.Bytes()
}

// DecodeReverseKey parses a record produced by ReverseKey.Encode.
func DecodeReverseKey(data []byte) (ReverseKey, error) {
	var k ReverseKey
	r := NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return k, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagRevUserID:
			k.UserID, err = r.Uint64()
		case tagRevTsZone:
			k.TimestampZone, err = r.Uint64()
		case tagRevLongZone:
			k.LongZone, err = r.Float32()
		case tagRevLatZone:
			k.LatZone, err = r.Float32()
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return k, err
		}
	}
	return k, nil
}

// ReverseValue is the decoded form of a by-user row's value: the quantised
// zones, redundant with the key, kept for symmetry with the original schema.
type ReverseValue struct {
	LongZone float32
	LatZone  float32
}

// Encode serializes v.
func (v ReverseValue) Encode() []byte {
	w := NewWriter(16)
	w.PutFloat32(tagRevLongZone, v.LongZone)
	w.PutFloat32(tagRevLatZone, v.LatZone)
	return w.Bytes()
}

// DecodeReverseValue parses a record produced by ReverseValue.Encode.
func DecodeReverseValue(data []byte) (ReverseValue, error) {
	var v ReverseValue
	r := NewReader(data)
	for {
		tag, wt, ok, err := r.Next()
		if err != nil {
			return v, err
		}
		if !ok {
			break
		}
		switch tag {
		case tagRevLongZone:
			v.LongZone, err = r.Float32()
		case tagRevLatZone:
			v.LatZone, err = r.Float32()
		default:
			err = r.Skip(wt)
		}
		if err != nil {
			return v, err
		}
	}
	return v, nil
}
