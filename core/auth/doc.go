// Package auth provides the login and logout operations of the session lab.
//
//	svc, err := auth.New(policy, store, verifier)
//
//	res, err := svc.Authenticate(ctx, req, username, password)
//	switch {
//	case errors.Is(err, auth.ErrInvalidCredentials):
//		// render the login page with err.Error()
//	case err != nil:
//		return err
//	case res.Status == auth.StatusAlreadyAuthenticated:
//		// redirect home
//	default:
//		// write res.Outcome cookies, redirect home
//	}
//
// What Authenticate does to the session depends on the policy: the permissive
// policy authenticates the existing identifier, the strict policy replaces it.
package auth
