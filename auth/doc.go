// Package auth provides the authentication agent of a swarm.
//
// The agent manages user accounts and issues HS256 JSON Web Tokens. It
// exposes four operations (register_user, login, refresh_token,
// update_password) and answers IsAccessible queries from the web host, which
// consults it before routing protected actions.
//
// Passwords are stored as argon2id hashes in PHC string format. Users are
// persisted through a Store; InMemoryStore and JSONFileStore are provided.
package auth
