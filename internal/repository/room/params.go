package room

type CreateRoomParams struct {
	Name     string
	VideoURL string
}

type AddMessageParams struct {
	RoomId  string
	Author  string
	Content string
}
