// Package sandbox implements a local Secure File Service compatible HTTP
// server backed by filesystem storage.
//
// It speaks the same REST API the sfs client uses, so the client can be
// exercised without a remote deployment:
//
//	store := filesystem.NewFileStorage(root)
//	users, _ := keybackend.NewUserStore(keybackend.UsersConfig{
//		Inline: []keybackend.User{{Username: "tower", Password: "s3cret"}},
//	})
//	handler := sandbox.NewHandler(&sandbox.HandlerConfig{Auth: users}, store)
//	http.ListenAndServe(":5709", handler.Router())
//
// Uploads are multipart/form-data with the archive in the "uploadFile" part
// and stored under the name given in the "filename" field. Downloads and
// deletes accept the logical name with or without the ".zip" suffix.
//
// Errors are returned as JSON:
//
//	{"error": "not_found", "message": "File not found"}
package sandbox
