package types

type ActorKind string

const (
	ActorAuthenticated ActorKind = "authenticated"
	ActorAnonymous     ActorKind = "anonymous"
)

// Actor identifies who is talking to the backend. Exactly one kind is
// active at a time; anonymous history is never dropped when a user signs
// in, it stays addressable through its session id as a past session.
type Actor struct {
	Kind        ActorKind
	UserID      string
	BearerToken string
	SessionID   string
}

func AuthenticatedActor(userID, bearerToken string) Actor {
	return Actor{Kind: ActorAuthenticated, UserID: userID, BearerToken: bearerToken}
}

func AnonymousActor(sessionID string) Actor {
	return Actor{Kind: ActorAnonymous, SessionID: sessionID}
}

func (a Actor) Authenticated() bool { return a.Kind == ActorAuthenticated }

func (a Actor) Anonymous() bool { return a.Kind == ActorAnonymous }
