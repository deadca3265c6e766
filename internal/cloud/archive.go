// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud services.
// This file contains helpers for the Google Cloud Storage archive: writing
// raw transcript text and thumbnail images into buckets, and minting short
// lived V4 signed URLs so clients can download archived transcripts without
// the bucket being public.
//
// Functions:
//   - WriteObject: Writes a byte payload to a bucket under a given name.
//   - SignObjectURL: Creates a V4 signed GET URL for an archived object using
//     the IAM credentials service to sign the payload.
package cloud

import (
	"context"
	"fmt"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// SignedURLExpiry is how long a signed transcript download URL stays valid.
const SignedURLExpiry = 15 * time.Minute

// WriteObject writes the given payload to a GCS bucket under the given object
// name, overwriting any existing object. The content type is stored on the
// object's metadata so downloads are served with the right MIME type.
//
// Inputs:
//   - ctx: The context for the storage operation.
//   - client: An authenticated *storage.Client.
//   - bucket: The destination bucket name.
//   - name: The object name within the bucket (e.g., a video id).
//   - contentType: The MIME type of the payload (e.g., "text/plain").
//   - payload: The raw bytes to store.
//
// Outputs:
//   - error: An error if the write or close fails.
func WriteObject(ctx context.Context, client *storage.Client, bucket string, name string, contentType string, payload []byte) error {
	writer := client.Bucket(bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(payload); err != nil {
		// Close is still required to release the writer; the write error is
		// the one worth surfacing.
		_ = writer.Close()
		return fmt.Errorf("failed to write object %s to bucket %s: %w", name, bucket, err)
	}
	// The upload is not durable until Close returns.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s in bucket %s: %w", name, bucket, err)
	}
	return nil
}

// SignObjectURL creates a V4 signed GET URL for an object. Signing is
// delegated to the IAM credentials service so the server never holds a
// private key locally; the service account only needs the
// `iam.serviceAccounts.signBlob` permission on itself.
//
// Inputs:
//   - ctx: The context for the signing call.
//   - client: An authenticated *storage.Client (used to build the URL).
//   - iamClient: The IAM credentials client that performs the signing.
//   - serviceAccount: The email of the signing service account.
//   - bucket: The bucket holding the object.
//   - name: The object name.
//
// Outputs:
//   - string: A signed URL valid for SignedURLExpiry.
//   - error: An error if the signing call fails.
func SignObjectURL(
	ctx context.Context,
	client *storage.Client,
	iamClient *credentials.IamCredentialsClient,
	serviceAccount string,
	bucket string,
	name string) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		GoogleAccessID: serviceAccount,
		Expires:        time.Now().Add(SignedURLExpiry),
		SignBytes: func(b []byte) ([]byte, error) {
			resp, err := iamClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", serviceAccount),
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}
	url, err := client.Bucket(bucket).SignedURL(name, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign url for object %s in bucket %s: %w", name, bucket, err)
	}
	return url, nil
}
