// Package stepupsdk is the Go client for the Casefolio step-up MFA service.
//
// Callers authenticate with an access token minted by the platform's primary
// auth service and use a Session for all per-user operations:
//
//	client := stepupsdk.NewClient("http://localhost:8080")
//	session := client.NewSession(accessToken)
//
//	status, err := session.Status(ctx)
//	material, err := session.EnrollTOTP(ctx)
//	err = session.ConfirmTOTP(ctx, "123456")
//
// The server-side HTTP handlers share this package's request and response
// types, so the wire contract lives in exactly one place.
package stepupsdk
