// Package homework holds the review-status domain: the status catalog, the
// shape check for API responses and the notification text for one record.
//
// Everything here is pure; network and chat delivery live elsewhere.
package homework
