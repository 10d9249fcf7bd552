package user

// User is the caller of the API as identified by the upstream gateway. Accounts are owned by
// the onboarding service; this service only knows the uid.
type User struct {
	Uid string
}
