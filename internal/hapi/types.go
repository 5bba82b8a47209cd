package hapi

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"StateProof/internal/streamobject"
)

// HashAlgorithmSHA384 is the protobuf HashAlgorithm enum value for SHA-384.
const HashAlgorithmSHA384 = 1

// AccountID is a shard.realm.num entity id.
type AccountID struct {
	Shard int64 // Shard is the shard number
	Realm int64 // Realm is the realm number
	Num   int64 // Num is the account number
}

// String returns the dotted shard.realm.num form.
func (a AccountID) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Shard, a.Realm, a.Num)
}

// ParseAccountID decodes an AccountID message.
func ParseAccountID(msg []byte) (AccountID, error) {
	var a AccountID

	err := Walk(msg, func(f Field) error {
		switch f.Num {
		case 1:
			a.Shard = f.Int64()
		case 2:
			a.Realm = f.Int64()
		case 3:
			a.Num = f.Int64()
		}
		return nil
	})

	return a, err
}

// ParseAccountIDString parses the dotted shard.realm.num form.
func ParseAccountIDString(s string) (AccountID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return AccountID{}, fmt.Errorf("account id %q: want shard.realm.num", s)
	}

	var nums [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return AccountID{}, fmt.Errorf("account id %q:\n%w", s, err)
		}
		nums[i] = n
	}

	return AccountID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

// Encode returns the AccountID message.
func (a AccountID) Encode() []byte {
	var b []byte
	b = AppendVarint(b, 1, uint64(a.Shard))
	b = AppendVarint(b, 2, uint64(a.Realm))

	return AppendVarint(b, 3, uint64(a.Num))
}

// TransactionID identifies a transaction by payer and valid start time.
type TransactionID struct {
	Payer   AccountID // Payer is the paying account
	Seconds int64     // Seconds is the valid start, whole seconds
	Nanos   int32     // Nanos is the valid start, nanosecond part
}

// String returns the canonical shard.realm.num-seconds-nanos form.
func (id TransactionID) String() string {
	return fmt.Sprintf("%s-%d-%09d", id.Payer, id.Seconds, id.Nanos)
}

// ParseTransactionIDString parses the canonical shard.realm.num-seconds-nanos
// form. The "@" separator (shard.realm.num@seconds.nanos) is also accepted.
func ParseTransactionIDString(s string) (TransactionID, error) {
	var payer, secs, nanos string

	if at := strings.IndexByte(s, '@'); at >= 0 {
		payer = s[:at]
		var ok bool
		secs, nanos, ok = strings.Cut(s[at+1:], ".")
		if !ok {
			return TransactionID{}, fmt.Errorf("transaction id %q: want payer@seconds.nanos", s)
		}
	} else {
		parts := strings.Split(s, "-")
		if len(parts) != 3 {
			return TransactionID{}, fmt.Errorf("transaction id %q: want payer-seconds-nanos", s)
		}
		payer, secs, nanos = parts[0], parts[1], parts[2]
	}

	acct, err := ParseAccountIDString(payer)
	if err != nil {
		return TransactionID{}, err
	}

	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return TransactionID{}, fmt.Errorf("transaction id %q seconds:\n%w", s, err)
	}

	nano, err := strconv.ParseInt(nanos, 10, 32)
	if err != nil {
		return TransactionID{}, fmt.Errorf("transaction id %q nanos:\n%w", s, err)
	}

	return TransactionID{Payer: acct, Seconds: sec, Nanos: int32(nano)}, nil
}

// TransactionKey is the identity triple a record file is indexed by.
type TransactionKey struct {
	ID        string // ID is the canonical transaction id string
	Nonce     int32  // Nonce distinguishes child transactions
	Scheduled bool   // Scheduled is set for scheduled executions
}

// String returns a compact textual form of the key.
func (k TransactionKey) String() string {
	return fmt.Sprintf("%s/%d/%t", k.ID, k.Nonce, k.Scheduled)
}

// RecordIdentity holds the transaction identity fields carried by a
// TransactionRecord.
type RecordIdentity struct {
	ID        TransactionID // ID is the transaction id
	Nonce     int32         // Nonce is the child transaction nonce
	Scheduled bool          // Scheduled is set for scheduled executions
}

// Key returns the identity as a TransactionKey.
func (r RecordIdentity) Key() TransactionKey {
	return TransactionKey{ID: r.ID.String(), Nonce: r.Nonce, Scheduled: r.Scheduled}
}

// ParseRecordIdentity extracts the transaction identity from a serialized
// TransactionRecord (field 3, transactionID).
func ParseRecordIdentity(record []byte) (RecordIdentity, error) {
	var out RecordIdentity
	found := false

	err := Walk(record, func(f Field) error {
		if f.Num != 3 || f.Type != protowire.BytesType {
			return nil
		}

		found = true

		return Walk(f.Bytes, func(tf Field) error {
			switch tf.Num {
			case 1:
				return Walk(tf.Bytes, func(ts Field) error {
					switch ts.Num {
					case 1:
						out.ID.Seconds = ts.Int64()
					case 2:
						out.ID.Nanos = ts.Int32()
					}
					return nil
				})
			case 2:
				acct, err := ParseAccountID(tf.Bytes)
				if err != nil {
					return err
				}
				out.ID.Payer = acct
			case 3:
				out.Scheduled = tf.Bool()
			case 4:
				out.Nonce = tf.Int32()
			}
			return nil
		})
	})
	if err != nil {
		return RecordIdentity{}, err
	}

	if !found {
		return RecordIdentity{}, malformed("transaction record has no transaction id")
	}

	return out, nil
}

// EncodeRecord builds a minimal TransactionRecord carrying the identity and
// an opaque memo, enough for record files produced by the encoders.
func EncodeRecord(id RecordIdentity, memo string) []byte {
	var ts []byte
	ts = AppendVarint(ts, 1, uint64(id.ID.Seconds))
	ts = AppendInt32(ts, 2, id.ID.Nanos)

	var txID []byte
	txID = AppendMessage(txID, 1, ts)
	txID = AppendMessage(txID, 2, id.ID.Payer.Encode())
	if id.Scheduled {
		txID = AppendVarint(txID, 3, 1)
	}
	txID = AppendInt32(txID, 4, id.Nonce)

	var rec []byte
	rec = AppendMessage(rec, 3, txID)

	return AppendBytes(rec, 5, []byte(memo))
}

// SemanticVersion is a protobuf major.minor.patch triple.
type SemanticVersion struct {
	Major int32 // Major is the major version
	Minor int32 // Minor is the minor version
	Patch int32 // Patch is the patch version
}

// ParseSemanticVersion decodes a SemanticVersion message.
func ParseSemanticVersion(msg []byte) (SemanticVersion, error) {
	var v SemanticVersion

	err := Walk(msg, func(f Field) error {
		switch f.Num {
		case 1:
			v.Major = f.Int32()
		case 2:
			v.Minor = f.Int32()
		case 3:
			v.Patch = f.Int32()
		}
		return nil
	})

	return v, err
}

// Encode returns the SemanticVersion message.
func (v SemanticVersion) Encode() []byte {
	var b []byte
	b = AppendInt32(b, 1, v.Major)
	b = AppendInt32(b, 2, v.Minor)

	return AppendInt32(b, 3, v.Patch)
}

// ParseHashObject decodes a protobuf HashObject into its stream object form.
func ParseHashObject(msg []byte) (*streamobject.HashObject, error) {
	var algorithm, length int32
	var hash []byte

	err := Walk(msg, func(f Field) error {
		switch f.Num {
		case 1:
			algorithm = f.Int32()
		case 2:
			length = f.Int32()
		case 3:
			hash = f.Bytes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if algorithm != HashAlgorithmSHA384 {
		return nil, streamobject.NewError(streamobject.ErrUnknownDigestType,
			fmt.Sprintf("hash object: unknown algorithm %d", algorithm))
	}

	size, _ := streamobject.DigestSize(streamobject.DigestSHA384)
	if int(length) != size || len(hash) != size {
		return nil, streamobject.NewError(streamobject.ErrUnknownDigestType,
			fmt.Sprintf("hash object: length %d/%d does not match digest size %d", length, len(hash), size))
	}

	return streamobject.NewHashObject(hash), nil
}

// EncodeHashObject returns the protobuf HashObject message for h.
func EncodeHashObject(h *streamobject.HashObject) []byte {
	var b []byte
	b = AppendInt32(b, 1, HashAlgorithmSHA384)
	b = AppendInt32(b, 2, int32(len(h.Hash)))

	return AppendBytes(b, 3, h.Hash)
}
