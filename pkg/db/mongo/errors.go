package mongo

import (
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsDuplicateKeyOn reports whether err is a duplicate key error raised by
// the named unique index.
func IsDuplicateKeyOn(err error, index string) bool {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return false
	}
	return strings.Contains(err.Error(), "index: "+index+" ")
}
