package service

// PlatformCommissionRate открывает platformCommissionRate для внешних тестов пакета.
var PlatformCommissionRate = platformCommissionRate
