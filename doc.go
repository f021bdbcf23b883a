// Package identity provides a small identity service: user registration,
// password login, JWT issuance and validation, plus the HTTP surface that
// exposes them under /api.
//
// User lifecycle:
//   - Users carry a UserStatus field that is persisted via Bun. Accounts start
//     active and can be blocked; blocked is terminal, so the state machine
//     refuses any transition away from it.
//   - UserStateMachine centralizes the transition graph and persistence.
//     Invoke Transition with ActorRef metadata whenever an account is blocked,
//     whether by an admin or by the account owner.
//
// Authorization:
//   - RequireAdmin and RequireSelfOrAdmin are pure predicates over the resolved
//     user; RouteAuthenticator wraps them as Fiber middleware behind Protected,
//     which validates the bearer token and re-reads the account so blocked
//     users lose access immediately, not at token expiry.
//
// Commands:
//   - RegisterUserHandler and BlockUserHandler carry the write paths. Both run
//     inside a transaction via RepositoryManager.RunInTx and report their
//     result through an OnResponse callback on the message.
package identity
