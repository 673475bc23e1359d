package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/policy"
	"github.com/minio/minio-go/v7/pkg/set"
)

// ErrUniformAccess is returned when a bucket does not support per-object
// permission grants.
var ErrUniformAccess = errors.New("bucket uses uniform access and does not support per-object grants")

const (
	policyVersion   = "2012-10-17"
	actionGetObject = "s3:GetObject"
	anyPrincipal    = "*"
	grantSidPrefix  = "PcadminPublicRead"
)

// Error codes S3-compatible backends answer with when bucket policies
// cannot express per-object grants.
var uniformAccessCodes = map[string]bool{
	"NotImplemented":                true,
	"AccessControlListNotSupported": true,
	"MethodNotAllowed":              true,
}

// Access describes how an object can be read.
type Access struct {
	// Public is true when an anonymous principal can read the object.
	Public bool
	// Uniform is true when the bucket does not support per-object grants.
	Uniform bool
}

// ObjectAccess reports whether the object is publicly readable and whether
// its bucket accepts per-object grants.
func ObjectAccess(ctx context.Context, client Client, bucket, key string) (Access, error) {
	doc, err := loadPolicy(ctx, client, bucket)
	if err != nil {
		if isUniformAccess(err) {
			return Access{Uniform: true}, nil
		}
		return Access{}, err
	}
	return Access{Public: grantsPublicRead(doc, bucket, key)}, nil
}

// GrantPublicRead adds a policy statement that lets anyone read the object.
// The statement carries a Sid derived from the key so it can be revoked later
// without touching grants made by someone else.
func GrantPublicRead(ctx context.Context, client Client, bucket, key string) error {
	doc, err := loadPolicy(ctx, client, bucket)
	if err != nil {
		if isUniformAccess(err) {
			return ErrUniformAccess
		}
		return err
	}

	sid := GrantSid(key)
	for _, st := range doc.Statements {
		if st.Sid == sid {
			return nil
		}
	}

	doc.Statements = append(doc.Statements, policy.Statement{
		Sid:       sid,
		Effect:    "Allow",
		Principal: policy.User{AWS: set.CreateStringSet(anyPrincipal)},
		Actions:   set.CreateStringSet(actionGetObject),
		Resources: set.CreateStringSet(objectARN(bucket, key)),
	})
	return savePolicy(ctx, client, bucket, doc)
}

// RevokePublicRead removes the grant added by GrantPublicRead. When all is
// set, every statement granting public read on exactly this object is removed
// as well. Wildcard statements covering other objects are never touched.
func RevokePublicRead(ctx context.Context, client Client, bucket, key string, all bool) error {
	doc, err := loadPolicy(ctx, client, bucket)
	if err != nil {
		if isUniformAccess(err) {
			return ErrUniformAccess
		}
		return err
	}

	sid := GrantSid(key)
	arn := objectARN(bucket, key)
	kept := doc.Statements[:0]
	removed := 0
	for _, st := range doc.Statements {
		exact := len(st.Resources) == 1 && st.Resources.Contains(arn) && isPublicRead(st)
		if st.Sid == sid || (all && exact) {
			removed++
			continue
		}
		kept = append(kept, st)
	}
	if removed == 0 {
		return nil
	}
	doc.Statements = kept
	return savePolicy(ctx, client, bucket, doc)
}

// GrantSid returns the statement id used for grants on the given key.
func GrantSid(key string) string {
	sum := sha256.Sum256([]byte(key))
	return grantSidPrefix + hex.EncodeToString(sum[:8])
}

// PublicURL returns the path-style URL an anonymous client can fetch the
// object from.
func PublicURL(client Client, bucket, key string) string {
	u := *client.EndpointURL()
	u.Path = "/" + bucket + "/" + key
	u.RawQuery = ""
	return u.String()
}

func objectARN(bucket, key string) string {
	return "arn:aws:s3:::" + bucket + "/" + key
}

func isPublicRead(st policy.Statement) bool {
	if st.Effect != "Allow" || !st.Principal.AWS.Contains(anyPrincipal) {
		return false
	}
	return st.Actions.Contains(actionGetObject) || st.Actions.Contains("s3:*")
}

func grantsPublicRead(doc policy.BucketAccessPolicy, bucket, key string) bool {
	arn := objectARN(bucket, key)
	for _, st := range doc.Statements {
		if !isPublicRead(st) {
			continue
		}
		for _, r := range st.Resources.ToSlice() {
			if r == arn {
				return true
			}
			if strings.HasSuffix(r, "*") && strings.HasPrefix(arn, strings.TrimSuffix(r, "*")) {
				return true
			}
		}
	}
	return false
}

func isUniformAccess(err error) bool {
	return uniformAccessCodes[minio.ToErrorResponse(err).Code]
}

func loadPolicy(ctx context.Context, client Client, bucket string) (policy.BucketAccessPolicy, error) {
	doc := policy.BucketAccessPolicy{Version: policyVersion}

	raw, err := client.GetBucketPolicy(ctx, bucket)
	if err != nil {
		return doc, err
	}
	if strings.TrimSpace(raw) == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return doc, fmt.Errorf("failed to parse policy of bucket %s: %w", bucket, err)
	}
	return doc, nil
}

func savePolicy(ctx context.Context, client Client, bucket string, doc policy.BucketAccessPolicy) error {
	if len(doc.Statements) == 0 {
		return client.SetBucketPolicy(ctx, bucket, "")
	}
	if doc.Version == "" {
		doc.Version = policyVersion
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode policy of bucket %s: %w", bucket, err)
	}
	if err := client.SetBucketPolicy(ctx, bucket, string(data)); err != nil {
		if isUniformAccess(err) {
			return ErrUniformAccess
		}
		return err
	}
	return nil
}

