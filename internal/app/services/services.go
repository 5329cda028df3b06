package services

// Services defined in this package:
// - AssignmentService: Pairs mentors with students and manages mentor capacity
// - MessageService: Handles direct and group mentorship messaging
// - ChannelResolver: Maps callers onto the (mentor, student) channels they may use
//
// Services talk to persistence through the narrow store interfaces declared
// next to each service, so tests can substitute in-memory fakes for the
// pgx-backed repositories.
