package service

import "twii/internal/apperror"

// Authorize allows the mutation only when the requester owns the resource.
// resource names the thing in the error, e.g. "posts".
func Authorize(ownerID, requesterID, resource string) error {
	if ownerID == "" || ownerID != requesterID {
		return apperror.Forbiddenf("You can only modify your own %s", resource)
	}
	return nil
}
