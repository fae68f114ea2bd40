// Package sessiontransport carries session state over HTTP cookies.
//
// Two cookies are used:
//
//   - custom_session_id: the plain session identifier
//   - session: the client payload (session.Payload) as AES-GCM encrypted JSON
//
// Read turns a request into a binding.Request, including the optional "sid"
// query parameter. Write applies a binding.Outcome: it issues or expires the
// identifier cookie and refreshes or clears the payload cookie.
//
//	transport := sessiontransport.NewCookie(cookieManager)
//
//	req := transport.Read(r)
//	outcome, err := policy.Resolve(ctx, req)
//	if err != nil {
//		return err
//	}
//	err = transport.Write(w, outcome, policy.CookieOptions()...)
//
// Cookie names and the query parameter are configurable via CookieConfig
// (SESSION_COOKIE_NAME, SESSION_PAYLOAD_COOKIE_NAME, SESSION_QUERY_PARAM).
package sessiontransport
