// Package edge runs the auth gateway as a CloudFront viewer-request function.
//
// A Passthrough returns the event's request object byte for byte so CloudFront
// forwards it to the origin unchanged. IssueSession and Reject produce
// generated responses in CloudFront's {status, statusDescription, headers}
// shape with lowercase header keys.
package edge
