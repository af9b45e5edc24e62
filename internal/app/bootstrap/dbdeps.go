// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/driftwoodapp/driftwood/internal/app/system/identity"
	"github.com/driftwoodapp/driftwood/internal/app/system/objstore"
)

// DBDeps holds database and back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Blobs stores uploaded images. The deletion cascade clears whole
	// key prefixes from it when an account is removed.
	Blobs objstore.Store

	// Identity talks to the external provider that owns user accounts.
	Identity identity.Provider
}
