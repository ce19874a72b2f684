package mqtt

// topicRoot prefixes everything the API publishes.
const topicRoot = "pillarmap"

// Topics builds Pillar Map topic names.
type Topics struct{}

// SystemStatus is where the online/offline status and the Last Will go:
// pillarmap/system/status.
func (Topics) SystemStatus() string {
	return topicRoot + "/system/status"
}

// Event returns pillarmap/event/<name>.
func (Topics) Event(name string) string {
	return topicRoot + "/event/" + name
}

// WorkerDirectory carries the last worker directory load result.
func (t Topics) WorkerDirectory() string {
	return t.Event("worker_directory")
}
