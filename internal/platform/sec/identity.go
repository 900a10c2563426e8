// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package sec

// Identity is the request-scoped binding of a resolved user account.
//
// # Lifecycle
//
// The authentication middleware builds an Identity from the database record
// matching a verified token's subject, attaches it to the request context,
// and discards it when the request ends. It is never persisted or shared
// across requests.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
