package rules

// symptomRedFlags are scanned in order against free-text symptoms.
// The scan stops at the first match: the point of the triage gate is
// an immediate emergency signal, not an inventory of every flag, so
// the position of a phrase in this list decides which one is reported
// when several are present.
var symptomRedFlags = []string{
	"crushing chest pain", "chest pressure", "cannot breathe", "can't breathe",
	"loss of consciousness", "unconscious", "unresponsive",
	"uncontrolled bleeding", "severe bleeding",
	"seizure", "vision loss", "slurred speech", "face drooping",
}
