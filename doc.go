// Package whitelabel lets tenant organizations serve the product under
// their own domain and branding.
//
// Two questions are answered for every request: has the organization
// proven it owns the domain the request arrived on, and which branding
// applies. Ownership is proven out of band by CNAME, TXT and TLS checks
// run together; all of them must pass.
//
// # Quick Start
//
// Build a [Service] from a [Config] and a store, then serve the operator
// API on its own host and the branded proxy on every other host:
//
//	svc, err := whitelabel.NewService(cfg, postgres.New(pool),
//	    whitelabel.WithRedis(client),
//	    whitelabel.WithServiceLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	jobs, err := job.NewManager(pool, svc.JobOptions()...)
//	if err != nil {
//	    return err
//	}
//
//	err = whitelabel.Run(
//	    whitelabel.Domain("admin.platform.io", svc.Admin(token, jobs)),
//	    whitelabel.Fallback(svc.Tenant(proxy)),
//	    whitelabel.StartupHook(jobs.Start),
//	    whitelabel.ShutdownHook(jobs.Stop),
//	)
//
// # Tenant surface
//
// [Service.Tenant] resolves the branding for each request from the host
// and the authenticated organization and injects it into HTML and JSON
// responses of the wrapped handler. Authenticated users on another host
// are redirected to their verified domain. GET /branding returns the public
// subset as JSON. Resolution never fails a request; without branding the
// upstream response passes through untouched.
//
// # Operator API
//
// [Service.Admin] serves, behind a bearer token:
//
//	PUT    /orgs/{orgID}/domain               set or clear the custom domain
//	GET    /orgs/{orgID}/domain/setup         DNS records the tenant must publish
//	GET    /orgs/{orgID}/domain/verification  run the checks without storing
//	POST   /orgs/{orgID}/domain/verify        run and store the verdict
//	DELETE /orgs/{orgID}                      deactivate
//
// plus /metrics and the health endpoints without authentication.
//
// # Configuration
//
// [Config] carries env tags and is parsed with caarlos0/env; see
// [DefaultConfig] for the defaults.
package whitelabel
