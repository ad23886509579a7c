package utils

import (
	"context"
	"fmt"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	fbstorage "firebase.google.com/go/v4/storage"
	"github.com/sharath018/invitation-rsvp-backend/config"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var (
	FirebaseApp   *firebase.App
	StorageClient *fbstorage.Client
	once          sync.Once
	initErr       error
)

// InitFirebase initializes the Firebase Admin SDK and its Storage client (singleton)
func InitFirebase(cfg *config.Config) error {
	once.Do(func() {
		ctx := context.Background()

		credentialsPath := cfg.FirebaseCredentialsPath
		if credentialsPath == "" {
			credentialsPath = "./serviceAccountKey.json"
		}

		Log.Info("initializing firebase",
			zap.String("credentials", credentialsPath),
			zap.String("project_id", cfg.FirebaseProjectID),
			zap.String("bucket", cfg.FirebaseBucket),
		)

		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			initErr = fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
			return
		}
		if cfg.FirebaseBucket == "" {
			initErr = fmt.Errorf("FIREBASE_STORAGE_BUCKET is required for firebase storage")
			return
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{
			ProjectID:     cfg.FirebaseProjectID,
			StorageBucket: cfg.FirebaseBucket,
		}, option.WithCredentialsFile(credentialsPath))
		if err != nil {
			initErr = fmt.Errorf("firebase app initialization failed: %w", err)
			return
		}

		client, err := app.Storage(ctx)
		if err != nil {
			FirebaseApp = app
			initErr = fmt.Errorf("firebase storage client initialization failed: %w", err)
			return
		}

		FirebaseApp = app
		StorageClient = client
		Log.Info("firebase storage ready", zap.String("bucket", cfg.FirebaseBucket))
	})

	return initErr
}

// IsStorageEnabled checks if Firebase Storage is available
func IsStorageEnabled() bool {
	return StorageClient != nil
}

// GetInitError returns the initialization error if any
func GetInitError() error {
	return initErr
}
