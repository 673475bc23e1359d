// Package vsphere owns the authenticated vCenter connection.
//
// Connect returns an explicit Session holding the SOAP and REST clients.
// Nothing is stored globally: the caller passes the session to the catalog
// and inventory capabilities and closes it when done.
//
// The bootstrap is a finite retry with exponential backoff. Invalid
// credentials are not retried and surface as ErrInvalidLogin; every other
// failure is reported as a *ConnectError carrying the attempt count.
//
//	sess, err := vsphere.Connect(ctx, cfg.VSphere, logg)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close(ctx)
package vsphere
