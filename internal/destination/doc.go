// Package destination puts built distributions where they are wanted.
//
// Every Destination is told about each distribution of a run, whether it
// was just built or found elsewhere, and decides for itself what to do:
//
//   - DirectoryDestination copies freshly built files into a local directory.
//   - ChannelDestination publishes to an owner's channel on a hosting
//     service, linking or copying existing uploads where it can.
//   - S3Destination stores files in an S3 compatible bucket.
//
// FromURL turns a command line destination string into one of these.
package destination
