// Package toast sends transient notifications to the browser.
//
// Toasts travel over the live connection as "toast" frames carrying a
// Toast. The browser client renders them in a fixed corner and removes them
// after a few seconds.
//
//	func (v *customerView) saved(ctx live.Ctx) {
//	    toast.Success(ctx, "Customer created successfully")
//	}
//
// Empty messages fall back to a generic text per level, so a failed
// request without a server message still tells the user something went
// wrong.
package toast
